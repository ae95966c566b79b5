// Package services provides domain services that span more than one aggregate.
//
// The package includes:
//   - RepairCoordinator: keeps a service assignment and its machine on the
//     fixed status mapping while the repair moves forward
//   - AccessPolicy: resolves whether a role may use a resource, with
//     configured overrides taking precedence over built-in defaults
package services
