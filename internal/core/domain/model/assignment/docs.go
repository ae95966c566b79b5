// Package assignment models the work record of one technician repairing one
// machine at the maintenance center.
//
// Status flow:
//
//	ASSIGNED -> IN_PROGRESS -> PENDING_APPROVAL -> APPROVED | REJECTED
//	IN_PROGRESS | APPROVED | REJECTED -> COMPLETED -> RETURNED
//	REJECTED -> PENDING_APPROVAL (a new request after a rejection)
//
// Every state-changing call appends a LogEntry. Completion requires an
// approved cost whenever parts were used.
package assignment
