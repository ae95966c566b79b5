package machine

import (
	"errors"
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var (
	ErrMachineIsNotConstructed = errors.New("Machine must be created via NewMachine or RestoreMachine")
	ErrSerialIsRequired        = errs.NewValueIsRequiredError("serial")
	ErrAssignmentIsRequired    = errs.NewValueIsRequiredError("assignmentID")
	ErrTechnicianIsRequired    = errs.NewValueIsRequiredError("technicianID")
)

// Machine is a point-of-sale device tracked by serial number.
type Machine struct {
	id                  kernel.UUID
	serial              string
	manufacturer        string
	model               string
	status              Status
	branchID            kernel.UUID
	originBranchID      *kernel.UUID
	currentAssignmentID *kernel.UUID
	currentTechnicianID *kernel.UUID
	guard               guard.ConstructorGuard
}

// NewMachine registers a machine in NEW status owned by branchID.
func NewMachine(id kernel.UUID, serial, manufacturer, model string, branchID kernel.UUID) (*Machine, error) {
	m := &Machine{
		status: New,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		m.setID(id),
		m.setSerial(serial),
		m.setBranch(branchID),
	); err != nil {
		return nil, err
	}
	m.manufacturer = strings.TrimSpace(manufacturer)
	m.model = strings.TrimSpace(model)

	return m, nil
}

// RestoreMachine rebuilds a machine from its persisted state.
func RestoreMachine(
	id kernel.UUID,
	serial, manufacturer, model string,
	status Status,
	branchID kernel.UUID,
	originBranchID, currentAssignmentID, currentTechnicianID *kernel.UUID,
) (*Machine, error) {
	m, err := NewMachine(id, serial, manufacturer, model, branchID)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}

	m.status = status
	m.originBranchID = originBranchID
	m.currentAssignmentID = currentAssignmentID
	m.currentTechnicianID = currentTechnicianID
	return m, nil
}

func (m *Machine) Validate() error {
	if m == nil {
		return ErrMachineIsNotConstructed
	}
	return m.guard.Validate(ErrMachineIsNotConstructed)
}

func (m *Machine) ID() kernel.UUID {
	return m.id
}

func (m *Machine) Serial() string {
	return m.serial
}

func (m *Machine) Manufacturer() string {
	return m.manufacturer
}

func (m *Machine) Model() string {
	return m.model
}

func (m *Machine) Status() Status {
	return m.status
}

// BranchID is the owning branch.
func (m *Machine) BranchID() kernel.UUID {
	return m.branchID
}

// OriginBranchID is the branch the machine was sent from for repair.
func (m *Machine) OriginBranchID() *kernel.UUID {
	return m.originBranchID
}

// CurrentAssignmentID is set while a repair is open.
func (m *Machine) CurrentAssignmentID() *kernel.UUID {
	return m.currentAssignmentID
}

func (m *Machine) CurrentTechnicianID() *kernel.UUID {
	return m.currentTechnicianID
}

// Transition moves the machine along one edge of the lifecycle graph and
// returns the log entry describing the change. The machine is left untouched
// when the edge is illegal or its payload is incomplete.
func (m *Machine) Transition(target Status, tc TransitionContext) (StatusLog, error) {
	if err := target.Validate(); err != nil {
		return StatusLog{}, err
	}
	if err := tc.ActorID.Validate(); err != nil {
		return StatusLog{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}

	from := m.status
	if !from.CanTransitionTo(target) {
		return StatusLog{}, errs.NewTransitionError("machine", from, target)
	}

	switch target {
	case Assigned:
		if tc.Payload.AssignmentID == nil {
			return StatusLog{}, ErrAssignmentIsRequired
		}
		if tc.Payload.TechnicianID == nil {
			return StatusLog{}, ErrTechnicianIsRequired
		}
		assignmentID, technicianID := *tc.Payload.AssignmentID, *tc.Payload.TechnicianID
		m.currentAssignmentID = &assignmentID
		m.currentTechnicianID = &technicianID
	case ReceivedAtCenter:
		if !from.IsAtCenter() {
			origin := m.branchID
			m.originBranchID = &origin
		}
		m.currentAssignmentID = nil
		m.currentTechnicianID = nil
	case Standby, Sold:
		m.currentAssignmentID = nil
		m.currentTechnicianID = nil
		m.originBranchID = nil
	}

	m.status = target

	return StatusLog{
		ID:        kernel.NewUUID(),
		MachineID: m.id,
		Serial:    m.serial,
		From:      from,
		To:        target,
		ActorID:   tc.ActorID,
		Notes:     tc.Notes,
		CreatedAt: tc.At,
	}, nil
}

// MoveToBranch changes ownership. Callers pair it with the receipt of a
// transfer order.
func (m *Machine) MoveToBranch(branchID kernel.UUID) error {
	if m.status.IsTerminal() {
		return errs.NewConflictError("machine", "sold machines cannot change branch")
	}
	return m.setBranch(branchID)
}

func (m *Machine) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	m.id = id
	return nil
}

func (m *Machine) setSerial(serial string) error {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return ErrSerialIsRequired
	}
	m.serial = serial
	return nil
}

func (m *Machine) setBranch(branchID kernel.UUID) error {
	if err := branchID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("branchID", err)
	}
	m.branchID = branchID
	return nil
}
