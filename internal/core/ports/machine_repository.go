package ports

import (
	"context"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
)

// MachineRepository persists machines and their status history.
type MachineRepository interface {
	// Add inserts a machine. Serial numbers are unique.
	Add(ctx context.Context, m *machine.Machine) error

	// Get returns the machine or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*machine.Machine, error)

	GetBySerial(ctx context.Context, serial string) (*machine.Machine, error)

	// Update writes m only if the stored status still equals expected and
	// fails with a conflict otherwise.
	Update(ctx context.Context, m *machine.Machine, expected machine.Status) error

	// AppendLog adds one status history row.
	AppendLog(ctx context.Context, entry machine.StatusLog) error
}
