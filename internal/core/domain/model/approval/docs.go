// Package approval models the cost-approval handshake between the maintenance
// center and the branch that owns the machines.
//
// A Request is either tied to one service assignment or covers a batch of
// machine serials under inspection. It is PENDING until the target branch
// answers, and the answer is final.
package approval
