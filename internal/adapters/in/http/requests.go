package http

import (
	"github.com/google/uuid"
)

type transferItemRequest struct {
	Serial   string     `json:"serial"`
	PartID   *uuid.UUID `json:"partId"`
	Quantity int        `json:"quantity" validate:"gte=0"`
}

type createTransferOrderRequest struct {
	Type         string                `json:"type" validate:"required"`
	FromBranchID uuid.UUID             `json:"fromBranchId" validate:"required"`
	ToBranchID   uuid.UUID             `json:"toBranchId" validate:"required"`
	Notes        string                `json:"notes"`
	Items        []transferItemRequest `json:"items" validate:"required,min=1,dive"`
}

type receiveDecisionRequest struct {
	ItemID uuid.UUID `json:"itemId" validate:"required"`
	Accept bool      `json:"accept"`
}

type receiveTransferOrderRequest struct {
	Decisions []receiveDecisionRequest `json:"decisions" validate:"dive"`
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type optionalReasonRequest struct {
	Reason string `json:"reason"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type assignTechnicianRequest struct {
	MachineID    uuid.UUID `json:"machineId" validate:"required"`
	TechnicianID uuid.UUID `json:"technicianId" validate:"required"`
}

type partRequest struct {
	PartID   uuid.UUID `json:"partId" validate:"required"`
	Quantity int       `json:"quantity" validate:"gte=1"`
}

type updatePartsRequest struct {
	Parts []partRequest `json:"parts" validate:"dive"`
}

type requestApprovalRequest struct {
	Cost  *string `json:"cost" validate:"omitempty,numeric"`
	Notes string  `json:"notes"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type batchApprovalRequest struct {
	Serials []string `json:"serials" validate:"required,min=1,dive,required"`
	Cost    *string  `json:"cost" validate:"omitempty,numeric"`
	Notes   string   `json:"notes"`
}

type payDebtRequest struct {
	ReceiptNumber string `json:"receiptNumber" validate:"required"`
}

type pushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}
