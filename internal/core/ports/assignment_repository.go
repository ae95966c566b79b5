package ports

import (
	"context"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
)

// AssignmentRepository stores service assignments and their status log.
type AssignmentRepository interface {
	// Add inserts a new assignment with its first log entry.
	Add(ctx context.Context, a *assignment.Assignment) error

	// Get returns the assignment or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// Update writes the assignment only if the stored status still equals
	// expected and the stored version equals a.Version(), then appends log
	// entries not yet stored.
	Update(ctx context.Context, a *assignment.Assignment, expected assignment.Status) error

	// FindActiveByMachine returns the open assignment of a machine or an
	// ObjectNotFoundError.
	FindActiveByMachine(ctx context.Context, machineID kernel.UUID) (*assignment.Assignment, error)

	// FindLatestCompletedByMachine returns the most recent COMPLETED
	// assignment of a machine or an ObjectNotFoundError.
	FindLatestCompletedByMachine(ctx context.Context, machineID kernel.UUID) (*assignment.Assignment, error)
}
