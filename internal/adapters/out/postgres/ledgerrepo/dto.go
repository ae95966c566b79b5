// Package ledgerrepo persists branch debts and the payment journal.
package ledgerrepo

import (
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DebtDTO struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DebtorBranchID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreditorBranchID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MachineSerial    string          `gorm:"type:varchar(64)"`
	AssignmentID     *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaidAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	RemainingAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status           string          `gorm:"type:varchar(16);not null;index"`
	ReceiptNumber    string          `gorm:"type:varchar(64)"`
	PaidBy           *uuid.UUID      `gorm:"type:uuid"`
	PaidAt           *time.Time
	CreatedAt        time.Time `gorm:"index"`
}

func (DebtDTO) TableName() string {
	return "branch_debts"
}

type PaymentDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DebtID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceiptNumber string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PayerID       uuid.UUID       `gorm:"type:uuid;not null"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time
}

func (PaymentDTO) TableName() string {
	return "payments"
}

func fromDomain(d *ledger.Debt) DebtDTO {
	return DebtDTO{
		ID:               d.ID().Bytes(),
		DebtorBranchID:   d.DebtorBranchID().Bytes(),
		CreditorBranchID: d.CreditorBranchID().Bytes(),
		MachineSerial:    d.MachineSerial(),
		AssignmentID:     kernel.RawOptional(d.AssignmentID()),
		Amount:           d.Amount().Decimal(),
		PaidAmount:       d.PaidAmount().Decimal(),
		RemainingAmount:  d.RemainingAmount().Decimal(),
		Status:           d.Status().String(),
		ReceiptNumber:    d.ReceiptNumber(),
		PaidBy:           kernel.RawOptional(d.PaidBy()),
		PaidAt:           d.PaidAt(),
		CreatedAt:        d.CreatedAt(),
	}
}

func toDomain(dto DebtDTO) (*ledger.Debt, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	debtor, err := kernel.UUIDFromGoogle(dto.DebtorBranchID)
	if err != nil {
		return nil, err
	}
	creditor, err := kernel.UUIDFromGoogle(dto.CreditorBranchID)
	if err != nil {
		return nil, err
	}
	assignmentID, err := kernel.OptionalUUID(dto.AssignmentID)
	if err != nil {
		return nil, err
	}
	amount, err := kernel.NewMoney(dto.Amount)
	if err != nil {
		return nil, err
	}
	paid, err := kernel.NewMoney(dto.PaidAmount)
	if err != nil {
		return nil, err
	}
	remaining, err := kernel.NewMoney(dto.RemainingAmount)
	if err != nil {
		return nil, err
	}
	status, err := ledger.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	paidBy, err := kernel.OptionalUUID(dto.PaidBy)
	if err != nil {
		return nil, err
	}

	return ledger.RestoreDebt(
		id, debtor, creditor, dto.MachineSerial, assignmentID,
		amount, paid, remaining, status, dto.ReceiptNumber, paidBy, dto.PaidAt, dto.CreatedAt,
	)
}

func paymentFromDomain(p *ledger.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID.Bytes(),
		DebtID:        p.DebtID.Bytes(),
		ReceiptNumber: p.ReceiptNumber,
		Amount:        p.Amount.Decimal(),
		PayerID:       p.PayerID.Bytes(),
		BranchID:      p.BranchID.Bytes(),
		CreatedAt:     p.CreatedAt,
	}
}
