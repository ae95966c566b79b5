package machine

import (
	"time"

	"maintenance/internal/core/domain/model/kernel"
)

// StatusLog is the immutable record of one status change.
type StatusLog struct {
	ID        kernel.UUID
	MachineID kernel.UUID
	Serial    string
	From      Status
	To        Status
	ActorID   kernel.UUID
	Notes     string
	CreatedAt time.Time
}
