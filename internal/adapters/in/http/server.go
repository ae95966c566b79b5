package http

import (
	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/ports"
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	// Command handlers
	CreateTransferOrder  commands.CreateTransferOrderCommandHandler
	ReceiveTransferOrder commands.ReceiveTransferOrderCommandHandler
	RejectTransferOrder  commands.RejectTransferOrderCommandHandler
	CancelTransferOrder  commands.CancelTransferOrderCommandHandler
	TransitionMachine    commands.TransitionMachineCommandHandler
	AssignTechnician     commands.AssignTechnicianCommandHandler
	StartAssignment      commands.StartAssignmentCommandHandler
	UpdateParts          commands.UpdateAssignmentPartsCommandHandler
	RequestApproval      commands.RequestApprovalCommandHandler
	CompleteAssignment   commands.CompleteAssignmentCommandHandler
	CreateBatchApproval  commands.CreateBatchApprovalCommandHandler
	RespondApproval      commands.RespondApprovalCommandHandler
	PayDebt              commands.PayDebtCommandHandler
	RegisterPush         commands.RegisterPushSubscriptionCommandHandler

	// Query handlers
	PendingTransferOrders queries.ListPendingTransferOrdersQueryHandler
	PendingSerials        queries.GetPendingSerialsQueryHandler
	Kanban                queries.GetKanbanQueryHandler
	MyAssignments         queries.GetMyAssignmentsQueryHandler
	Approvals             queries.ListApprovalsQueryHandler
	PendingPayments       queries.ListPendingPaymentsQueryHandler
	PaymentSummary        queries.GetPaymentSummaryQueryHandler
	Entities              queries.ListEntitiesQueryHandler
}

// Server implements the HTTP endpoints. It translates requests into
// commands and queries and their results into JSON.
type Server struct {
	h        Handlers
	branches ports.BranchDirectory
}

func NewServer(h Handlers, branches ports.BranchDirectory) *Server {
	return &Server{h: h, branches: branches}
}
