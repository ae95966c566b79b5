// Package kernel provides the shared domain primitives of the maintenance service.
//
// The package includes:
//   - UUID: a validated identifier value object
//   - Money: a decimal amount carrying the single rounding rule used for every
//     cost, debt and payment in the system
//   - Actor and Role: the authenticated caller with its authorized branch set
//   - Branch and BranchType: the organizational unit a resource belongs to
//   - EntityKind: the closed set of workflow entities exposed to admin tooling
//
// The primitives are immutable values and safe for concurrent use.
package kernel
