// Package assignmentrepo persists service assignments and their action log.
package assignmentrepo

import (
	"time"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssignmentDTO is the row of service_assignments. ActiveKey holds the
// machine id while the assignment is open; its unique index allows one open
// assignment per machine.
type AssignmentDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MachineID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Serial            string          `gorm:"type:varchar(64);not null"`
	TechnicianID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	OriginBranchID    uuid.UUID       `gorm:"type:uuid;not null"`
	Status            string          `gorm:"type:varchar(24);not null;index"`
	Parts             []PartDTO       `gorm:"type:text;serializer:json"`
	TotalCost         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ApprovalStatus    string          `gorm:"type:varchar(16);not null"`
	ApprovedCost      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ApprovalRequestID *uuid.UUID      `gorm:"type:uuid"`
	Notes             string          `gorm:"type:text"`
	ActiveKey         *string         `gorm:"type:varchar(36);uniqueIndex"`
	CreatedAt         time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
	UpdatedAt         time.Time
	Version           int `gorm:"not null;default:0"`
}

func (AssignmentDTO) TableName() string {
	return "service_assignments"
}

// PartDTO is the JSON form of a part usage line.
type PartDTO struct {
	PartID    uuid.UUID       `json:"partId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type LogDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Action       string    `gorm:"type:varchar(32);not null"`
	FromStatus   string    `gorm:"type:varchar(24)"`
	ToStatus     string    `gorm:"type:varchar(24);not null"`
	ActorID      uuid.UUID `gorm:"type:uuid;not null"`
	Notes        string    `gorm:"type:text"`
	CreatedAt    time.Time
}

func (LogDTO) TableName() string {
	return "assignment_logs"
}

func PartsFromDomain(parts []kernel.PartUsage) []PartDTO {
	out := make([]PartDTO, 0, len(parts))
	for _, p := range parts {
		out = append(out, PartDTO{
			PartID:    p.PartID.Bytes(),
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice.Decimal(),
		})
	}
	return out
}

func PartsToDomain(dtos []PartDTO) ([]kernel.PartUsage, error) {
	out := make([]kernel.PartUsage, 0, len(dtos))
	for _, dto := range dtos {
		partID, err := kernel.UUIDFromGoogle(dto.PartID)
		if err != nil {
			return nil, err
		}
		price, err := kernel.NewMoney(dto.UnitPrice)
		if err != nil {
			return nil, err
		}
		p, err := kernel.NewPartUsage(partID, dto.Name, dto.Quantity, price)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func fromDomain(a *assignment.Assignment) AssignmentDTO {
	var activeKey *string
	if a.IsActive() {
		key := a.MachineID().String()
		activeKey = &key
	}

	return AssignmentDTO{
		ID:                a.ID().Bytes(),
		MachineID:         a.MachineID().Bytes(),
		Serial:            a.Serial(),
		TechnicianID:      a.TechnicianID().Bytes(),
		BranchID:          a.BranchID().Bytes(),
		OriginBranchID:    a.OriginBranchID().Bytes(),
		Status:            a.Status().String(),
		Parts:             PartsFromDomain(a.Parts()),
		TotalCost:         a.TotalCost().Decimal(),
		ApprovalStatus:    a.ApprovalStatus().String(),
		ApprovedCost:      a.ApprovedCost().Decimal(),
		ApprovalRequestID: kernel.RawOptional(a.ApprovalRequestID()),
		Notes:             a.Notes(),
		ActiveKey:         activeKey,
		CreatedAt:         a.CreatedAt(),
		StartedAt:         a.StartedAt(),
		CompletedAt:       a.CompletedAt(),
		Version:           a.Version(),
	}
}

func logsFromDomain(logs []assignment.LogEntry) []LogDTO {
	out := make([]LogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, LogDTO{
			ID:           l.ID.Bytes(),
			AssignmentID: l.AssignmentID.Bytes(),
			Action:       l.Action,
			FromStatus:   l.FromStatus.String(),
			ToStatus:     l.ToStatus.String(),
			ActorID:      l.ActorID.Bytes(),
			Notes:        l.Notes,
			CreatedAt:    l.CreatedAt,
		})
	}
	return out
}

func logToDomain(dto LogDTO) (assignment.LogEntry, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return assignment.LogEntry{}, err
	}
	assignmentID, err := kernel.UUIDFromGoogle(dto.AssignmentID)
	if err != nil {
		return assignment.LogEntry{}, err
	}
	actorID, err := kernel.UUIDFromGoogle(dto.ActorID)
	if err != nil {
		return assignment.LogEntry{}, err
	}
	return assignment.LogEntry{
		ID:           id,
		AssignmentID: assignmentID,
		Action:       dto.Action,
		FromStatus:   assignment.Status(dto.FromStatus),
		ToStatus:     assignment.Status(dto.ToStatus),
		ActorID:      actorID,
		Notes:        dto.Notes,
		CreatedAt:    dto.CreatedAt,
	}, nil
}

func toDomain(dto AssignmentDTO, logDTOs []LogDTO) (*assignment.Assignment, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	machineID, err := kernel.UUIDFromGoogle(dto.MachineID)
	if err != nil {
		return nil, err
	}
	technicianID, err := kernel.UUIDFromGoogle(dto.TechnicianID)
	if err != nil {
		return nil, err
	}
	branchID, err := kernel.UUIDFromGoogle(dto.BranchID)
	if err != nil {
		return nil, err
	}
	originID, err := kernel.UUIDFromGoogle(dto.OriginBranchID)
	if err != nil {
		return nil, err
	}
	status, err := assignment.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	approvalStatus, err := assignment.ParseApprovalStatus(dto.ApprovalStatus)
	if err != nil {
		return nil, err
	}
	parts, err := PartsToDomain(dto.Parts)
	if err != nil {
		return nil, err
	}
	totalCost, err := kernel.NewMoney(dto.TotalCost)
	if err != nil {
		return nil, err
	}
	approvedCost, err := kernel.NewMoney(dto.ApprovedCost)
	if err != nil {
		return nil, err
	}
	requestID, err := kernel.OptionalUUID(dto.ApprovalRequestID)
	if err != nil {
		return nil, err
	}

	logs := make([]assignment.LogEntry, 0, len(logDTOs))
	for _, l := range logDTOs {
		entry, logErr := logToDomain(l)
		if logErr != nil {
			return nil, logErr
		}
		logs = append(logs, entry)
	}

	return assignment.RestoreAssignment(
		id, machineID, dto.Serial, technicianID, branchID, originID,
		status, parts, totalCost, approvalStatus, approvedCost, requestID,
		dto.Notes, logs, dto.CreatedAt, dto.StartedAt, dto.CompletedAt, dto.Version,
	)
}
