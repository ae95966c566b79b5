// Package approvalrepo persists approval requests.
package approvalrepo

import (
	"time"

	"maintenance/internal/adapters/out/postgres/assignmentrepo"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestDTO is the row of approval_requests. ActiveKey mirrors SubjectKey
// while the request is pending, so one subject has at most one open request.
type RequestDTO struct {
	ID                uuid.UUID                `gorm:"type:uuid;primaryKey"`
	SubjectKind       string                   `gorm:"type:varchar(16);not null"`
	AssignmentID      *uuid.UUID               `gorm:"type:uuid;index"`
	MachineID         *uuid.UUID               `gorm:"type:uuid"`
	Serials           []string                 `gorm:"type:text;serializer:json"`
	SubjectKey        string                   `gorm:"type:text;not null;index"`
	RequesterBranchID uuid.UUID                `gorm:"type:uuid;not null;index"`
	TargetBranchID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	Cost              decimal.Decimal          `gorm:"type:numeric(14,2);not null"`
	Parts             []assignmentrepo.PartDTO `gorm:"type:text;serializer:json"`
	Notes             string                   `gorm:"type:text"`
	Status            string                   `gorm:"type:varchar(16);not null;index"`
	RequestedBy       uuid.UUID                `gorm:"type:uuid;not null"`
	CreatedAt         time.Time                `gorm:"index"`
	RespondedBy       *uuid.UUID               `gorm:"type:uuid"`
	RespondedAt       *time.Time
	RejectionReason   string `gorm:"type:text"`
	LastRemindedAt    *time.Time
	ActiveKey         *string `gorm:"type:text;uniqueIndex"`
}

func (RequestDTO) TableName() string {
	return "approval_requests"
}

func fromDomain(r *approval.Request) RequestDTO {
	subject := r.Subject()
	var activeKey *string
	if r.IsPending() {
		key := subject.Key()
		activeKey = &key
	}

	return RequestDTO{
		ID:                r.ID().Bytes(),
		SubjectKind:       string(subject.Kind()),
		AssignmentID:      kernel.RawOptional(subject.AssignmentID()),
		MachineID:         kernel.RawOptional(subject.MachineID()),
		Serials:           subject.Serials(),
		SubjectKey:        subject.Key(),
		RequesterBranchID: r.RequesterBranchID().Bytes(),
		TargetBranchID:    r.TargetBranchID().Bytes(),
		Cost:              r.Cost().Decimal(),
		Parts:             assignmentrepo.PartsFromDomain(r.Parts()),
		Notes:             r.Notes(),
		Status:            r.Status().String(),
		RequestedBy:       r.RequestedBy().Bytes(),
		CreatedAt:         r.CreatedAt(),
		RespondedBy:       kernel.RawOptional(r.RespondedBy()),
		RespondedAt:       r.RespondedAt(),
		RejectionReason:   r.RejectionReason(),
		LastRemindedAt:    r.LastRemindedAt(),
		ActiveKey:         activeKey,
	}
}

func toDomain(dto RequestDTO) (*approval.Request, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	kind, err := approval.ParseSubjectKind(dto.SubjectKind)
	if err != nil {
		return nil, err
	}
	assignmentID, err := kernel.OptionalUUID(dto.AssignmentID)
	if err != nil {
		return nil, err
	}
	machineID, err := kernel.OptionalUUID(dto.MachineID)
	if err != nil {
		return nil, err
	}
	subject, err := approval.RestoreSubject(kind, assignmentID, machineID, dto.Serials)
	if err != nil {
		return nil, err
	}
	requester, err := kernel.UUIDFromGoogle(dto.RequesterBranchID)
	if err != nil {
		return nil, err
	}
	target, err := kernel.UUIDFromGoogle(dto.TargetBranchID)
	if err != nil {
		return nil, err
	}
	cost, err := kernel.NewMoney(dto.Cost)
	if err != nil {
		return nil, err
	}
	parts, err := assignmentrepo.PartsToDomain(dto.Parts)
	if err != nil {
		return nil, err
	}
	status, err := approval.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	requestedBy, err := kernel.UUIDFromGoogle(dto.RequestedBy)
	if err != nil {
		return nil, err
	}
	respondedBy, err := kernel.OptionalUUID(dto.RespondedBy)
	if err != nil {
		return nil, err
	}

	return approval.RestoreRequest(
		id, subject, requester, target, cost, parts, dto.Notes, status,
		requestedBy, dto.CreatedAt, respondedBy, dto.RespondedAt, dto.RejectionReason, dto.LastRemindedAt,
	)
}
