package http

import (
	"time"

	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/model/transfer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func transferOrderResponse(o *transfer.Order) queries.TransferOrderView {
	items := make([]queries.TransferItemView, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, queries.TransferItemView{
			ID:          it.ID().Bytes(),
			Serial:      it.Serial(),
			PartID:      kernel.RawOptional(it.PartID()),
			Description: it.Description(),
			Quantity:    it.Quantity(),
			Status:      it.Status().String(),
		})
	}
	return queries.TransferOrderView{
		ID:           o.ID().Bytes(),
		Number:       o.Number(),
		Type:         o.Type().String(),
		FromBranchID: o.FromBranchID().Bytes(),
		ToBranchID:   o.ToBranchID().Bytes(),
		Status:       o.Status().String(),
		Notes:        o.Notes(),
		CreatedBy:    o.CreatedBy().Bytes(),
		CreatedAt:    o.CreatedAt(),
		Items:        items,
	}
}

type machineResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Serial              string     `json:"serial"`
	Manufacturer        string     `json:"manufacturer"`
	Model               string     `json:"model"`
	Status              string     `json:"status"`
	BranchID            uuid.UUID  `json:"branchId"`
	OriginBranchID      *uuid.UUID `json:"originBranchId,omitempty"`
	CurrentAssignmentID *uuid.UUID `json:"currentAssignmentId,omitempty"`
	CurrentTechnicianID *uuid.UUID `json:"currentTechnicianId,omitempty"`
}

func machineResponseOf(m *machine.Machine) machineResponse {
	return machineResponse{
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

type partResponse struct {
	PartID    uuid.UUID       `json:"partId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

type assignmentResponse struct {
	queries.AssignmentView
	Parts             []partResponse `json:"parts"`
	ApprovalRequestID *uuid.UUID     `json:"approvalRequestId,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	StartedAt         *time.Time     `json:"startedAt,omitempty"`
}

func partsResponse(parts []kernel.PartUsage) []partResponse {
	out := make([]partResponse, 0, len(parts))
	for _, p := range parts {
		out = append(out, partResponse{
			PartID:    p.PartID.Bytes(),
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice.Decimal(),
			Total:     p.Total().Decimal(),
		})
	}
	return out
}

func assignmentResponseOf(a *assignment.Assignment) assignmentResponse {
	return assignmentResponse{
		AssignmentView: queries.AssignmentView{
			ID:             a.ID().Bytes(),
			MachineID:      a.MachineID().Bytes(),
			Serial:         a.Serial(),
			TechnicianID:   a.TechnicianID().Bytes(),
			BranchID:       a.BranchID().Bytes(),
			OriginBranchID: a.OriginBranchID().Bytes(),
			Status:         a.Status().String(),
			TotalCost:      a.TotalCost().Decimal(),
			ApprovalStatus: a.ApprovalStatus().String(),
			ApprovedCost:   a.ApprovedCost().Decimal(),
			CreatedAt:      a.CreatedAt(),
			CompletedAt:    a.CompletedAt(),
		},
		Parts:             partsResponse(a.Parts()),
		ApprovalRequestID: kernel.RawOptional(a.ApprovalRequestID()),
		Notes:             a.Notes(),
		StartedAt:         a.StartedAt(),
	}
}

type approvalResponse struct {
	queries.ApprovalView
	Serials []string       `json:"serials,omitempty"`
	Parts   []partResponse `json:"parts,omitempty"`
}

func approvalResponseOf(r *approval.Request) approvalResponse {
	subject := r.Subject()
	return approvalResponse{
		ApprovalView: queries.ApprovalView{
			ID:                r.ID().Bytes(),
			SubjectKind:       string(subject.Kind()),
			SubjectKey:        subject.Key(),
			AssignmentID:      kernel.RawOptional(subject.AssignmentID()),
			RequesterBranchID: r.RequesterBranchID().Bytes(),
			TargetBranchID:    r.TargetBranchID().Bytes(),
			Cost:              r.Cost().Decimal(),
			Notes:             r.Notes(),
			Status:            r.Status().String(),
			RejectionReason:   r.RejectionReason(),
			CreatedAt:         r.CreatedAt(),
			RespondedAt:       r.RespondedAt(),
		},
		Serials: subject.Serials(),
		Parts:   partsResponse(r.Parts()),
	}
}

func debtResponse(d *ledger.Debt) queries.DebtView {
	return queries.DebtView{
		ID:               d.ID().Bytes(),
		DebtorBranchID:   d.DebtorBranchID().Bytes(),
		CreditorBranchID: d.CreditorBranchID().Bytes(),
		MachineSerial:    d.MachineSerial(),
		Amount:           d.Amount().Decimal(),
		PaidAmount:       d.PaidAmount().Decimal(),
		RemainingAmount:  d.RemainingAmount().Decimal(),
		Status:           d.Status().String(),
		ReceiptNumber:    d.ReceiptNumber(),
		CreatedAt:        d.CreatedAt(),
		PaidAt:           d.PaidAt(),
	}
}

type completionResponse struct {
	Assignment assignmentResponse `json:"assignment"`
	Debt       *queries.DebtView  `json:"debt,omitempty"`
}
