// Package machinerepo persists machines and their append-only status history.
package machinerepo

import (
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"

	"github.com/google/uuid"
)

// MachineDTO is the row of the machines table. Status is stored by name.
type MachineDTO struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Serial              string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	Manufacturer        string     `gorm:"type:varchar(128)"`
	Model               string     `gorm:"type:varchar(128)"`
	Status              string     `gorm:"type:varchar(32);not null;index"`
	BranchID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	OriginBranchID      *uuid.UUID `gorm:"type:uuid"`
	CurrentAssignmentID *uuid.UUID `gorm:"type:uuid"`
	CurrentTechnicianID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (MachineDTO) TableName() string {
	return "machines"
}

// StatusLogDTO is one row of machine_status_logs.
type StatusLogDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MachineID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Serial     string    `gorm:"type:varchar(64);not null;index"`
	FromStatus string    `gorm:"type:varchar(32)"`
	ToStatus   string    `gorm:"type:varchar(32);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	Notes      string    `gorm:"type:text"`
	CreatedAt  time.Time
}

func (StatusLogDTO) TableName() string {
	return "machine_status_logs"
}

func fromDomain(m *machine.Machine) MachineDTO {
	return MachineDTO{
		ID:                  m.ID().Bytes(),
		Serial:              m.Serial(),
		Manufacturer:        m.Manufacturer(),
		Model:               m.Model(),
		Status:              m.Status().String(),
		BranchID:            m.BranchID().Bytes(),
		OriginBranchID:      kernel.RawOptional(m.OriginBranchID()),
		CurrentAssignmentID: kernel.RawOptional(m.CurrentAssignmentID()),
		CurrentTechnicianID: kernel.RawOptional(m.CurrentTechnicianID()),
	}
}

// mutableColumns lists what an optimistic update writes. Nil pointers must be
// written as NULL, so a struct update that skips zero values cannot be used.
func mutableColumns(dto MachineDTO, at time.Time) map[string]any {
	return map[string]any{
		"status":                dto.Status,
		"branch_id":             dto.BranchID,
		"origin_branch_id":      dto.OriginBranchID,
		"current_assignment_id": dto.CurrentAssignmentID,
		"current_technician_id": dto.CurrentTechnicianID,
		"updated_at":            at,
	}
}

func toDomain(dto MachineDTO) (*machine.Machine, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	branchID, err := kernel.UUIDFromGoogle(dto.BranchID)
	if err != nil {
		return nil, err
	}
	status, err := machine.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	origin, err := kernel.OptionalUUID(dto.OriginBranchID)
	if err != nil {
		return nil, err
	}
	assignmentID, err := kernel.OptionalUUID(dto.CurrentAssignmentID)
	if err != nil {
		return nil, err
	}
	technicianID, err := kernel.OptionalUUID(dto.CurrentTechnicianID)
	if err != nil {
		return nil, err
	}

	return machine.RestoreMachine(id, dto.Serial, dto.Manufacturer, dto.Model, status, branchID, origin, assignmentID, technicianID)
}

func logFromDomain(entry machine.StatusLog) StatusLogDTO {
	from := ""
	if entry.From != machine.Unknown {
		from = entry.From.String()
	}
	return StatusLogDTO{
		ID:         entry.ID.Bytes(),
		MachineID:  entry.MachineID.Bytes(),
		Serial:     entry.Serial,
		FromStatus: from,
		ToStatus:   entry.To.String(),
		ActorID:    entry.ActorID.Bytes(),
		Notes:      entry.Notes,
		CreatedAt:  entry.CreatedAt,
	}
}
