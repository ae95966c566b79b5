// Package transfer models bulk movement orders of machines, SIM cards and
// spare parts between two branches.
//
// An Order is created PENDING with its items snapshotted by value. The
// destination branch resolves each item as accepted or rejected; the order is
// COMPLETED once no item is pending. While nothing has been accepted the
// destination may reject the whole order and the source may cancel it.
package transfer
