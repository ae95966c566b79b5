// Package errs provides the error taxonomy of the maintenance service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed or missing input
//   - ObjectNotFoundError: an unknown id or serial
//   - ForbiddenError: the actor's branch does not match the resource
//   - ConflictError, TransitionError: illegal state change, lost compare-and-swap, duplicate key
//   - PreconditionFailedError: a business precondition does not hold
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// The transport layer maps the sentinels to status codes, so a new error type
// only has to unwrap to the right sentinel to be reported correctly.
package errs
