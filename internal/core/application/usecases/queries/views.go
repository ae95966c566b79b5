package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models returned by the query handlers. They are flat projections of
// the stored rows and carry JSON tags for the HTTP layer.

type TransferItemView struct {
	ID          uuid.UUID  `json:"id"`
	Serial      string     `json:"serial,omitempty"`
	PartID      *uuid.UUID `json:"partId,omitempty"`
	Description string     `json:"description"`
	Quantity    int        `json:"quantity"`
	Status      string     `json:"status"`
}

// TransferOrderView is a pending order with its items.
type TransferOrderView struct {
	ID           uuid.UUID          `json:"id"`
	Number       string             `json:"number"`
	Type         string             `json:"type"`
	FromBranchID uuid.UUID          `json:"fromBranchId"`
	ToBranchID   uuid.UUID          `json:"toBranchId"`
	Status       string             `json:"status"`
	Notes        string             `json:"notes,omitempty"`
	CreatedBy    uuid.UUID          `json:"createdBy"`
	CreatedAt    time.Time          `json:"createdAt"`
	Items        []TransferItemView `json:"items"`
}

// MachineCard is one machine on the kanban board.
type MachineCard struct {
	ID                  uuid.UUID  `json:"id"`
	Serial              string     `json:"serial"`
	Manufacturer        string     `json:"manufacturer"`
	Model               string     `json:"model"`
	Status              string     `json:"status"`
	BranchID            uuid.UUID  `json:"branchId"`
	OriginBranchID      *uuid.UUID `json:"originBranchId,omitempty"`
	CurrentAssignmentID *uuid.UUID `json:"currentAssignmentId,omitempty"`
	CurrentTechnicianID *uuid.UUID `json:"currentTechnicianId,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// KanbanColumn holds the cards of one status.
type KanbanColumn struct {
	Status   string        `json:"status"`
	Machines []MachineCard `json:"machines"`
}

type AssignmentView struct {
	ID             uuid.UUID       `json:"id"`
	MachineID      uuid.UUID       `json:"machineId"`
	Serial         string          `json:"serial"`
	TechnicianID   uuid.UUID       `json:"technicianId"`
	BranchID       uuid.UUID       `json:"branchId"`
	OriginBranchID uuid.UUID       `json:"originBranchId"`
	Status         string          `json:"status"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	ApprovalStatus string          `json:"approvalStatus"`
	ApprovedCost   decimal.Decimal `json:"approvedCost"`
	CreatedAt      time.Time       `json:"createdAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

type ApprovalView struct {
	ID                uuid.UUID       `json:"id"`
	SubjectKind       string          `json:"subjectKind"`
	SubjectKey        string          `json:"subjectKey"`
	AssignmentID      *uuid.UUID      `json:"assignmentId,omitempty"`
	RequesterBranchID uuid.UUID       `json:"requesterBranchId"`
	TargetBranchID    uuid.UUID       `json:"targetBranchId"`
	Cost              decimal.Decimal `json:"cost"`
	Notes             string          `json:"notes,omitempty"`
	Status            string          `json:"status"`
	RejectionReason   string          `json:"rejectionReason,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	RespondedAt       *time.Time      `json:"respondedAt,omitempty"`
}

// DebtView is a debt with both branch names resolved.
type DebtView struct {
	ID               uuid.UUID       `json:"id"`
	DebtorBranchID   uuid.UUID       `json:"debtorBranchId"`
	CreditorBranchID uuid.UUID       `json:"creditorBranchId"`
	MachineSerial    string          `json:"machineSerial"`
	Amount           decimal.Decimal `json:"amount"`
	PaidAmount       decimal.Decimal `json:"paidAmount"`
	RemainingAmount  decimal.Decimal `json:"remainingAmount"`
	Status           string          `json:"status"`
	ReceiptNumber    string          `json:"receiptNumber,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
}

// PaymentSummary totals the debts matching a scope.
type PaymentSummary struct {
	Scope            string          `json:"scope"`
	OutstandingTotal decimal.Decimal `json:"outstandingTotal"`
	OutstandingCount int64           `json:"outstandingCount"`
}
