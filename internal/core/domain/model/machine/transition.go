package machine

import (
	"time"

	"maintenance/internal/core/domain/model/kernel"
)

// TransitionContext carries who asked for a status change and the data some
// edges need.
type TransitionContext struct {
	ActorID kernel.UUID
	Notes   string
	At      time.Time
	Payload TransitionPayload
}

// TransitionPayload holds edge-specific inputs.
type TransitionPayload struct {
	// AssignmentID and TechnicianID are required when entering ASSIGNED.
	AssignmentID *kernel.UUID
	TechnicianID *kernel.UUID
}
