// Package ledger records money one branch owes another after an approved
// repair, and the payments that settle it.
//
// A Debt is opened PENDING_PAYMENT with remaining == amount and is paid
// exactly once, in full, against a receipt number that is unique across the
// whole payment journal.
package ledger
