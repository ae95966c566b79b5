// Package machine implements the lifecycle of a point-of-sale machine record.
//
// The package includes:
//   - Machine: the aggregate owning the canonical status, owner branch,
//     origin branch and the links to the current service assignment
//   - Status: the lifecycle enumeration with its fixed legal-edge graph
//   - StatusLog: the immutable entry appended for every status change
//
// Key business rules:
//   - Status changes go only through Machine.Transition, which rejects any
//     edge outside the graph with an *errs.TransitionError
//   - Edge side effects are applied with the status: entering ASSIGNED links
//     the assignment and technician, returning to STANDBY or SOLD clears them,
//     entering RECEIVED_AT_CENTER records the branch the machine came from
//   - SOLD is terminal
package machine
