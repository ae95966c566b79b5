package commands

import (
	"context"

	"maintenance/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	MachineRepoFactory interface {
		MachineRepository() ports.MachineRepository
	}

	TransferOrderRepoFactory interface {
		TransferOrderRepository() ports.TransferOrderRepository
	}

	AssignmentRepoFactory interface {
		AssignmentRepository() ports.AssignmentRepository
	}

	ApprovalRepoFactory interface {
		ApprovalRepository() ports.ApprovalRepository
	}

	DebtRepoFactory interface {
		DebtRepository() ports.DebtRepository
	}

	InventoryRepoFactory interface {
		InventoryRepository() ports.InventoryRepository
	}

	AuditLogFactory interface {
		AuditLog() ports.AuditLog
	}

	MachineUoW interface {
		TxManager
		MachineRepoFactory
		AuditLogFactory
	}

	MachineUoWFactory interface {
		Create() MachineUoW
	}

	TransferUoW interface {
		TxManager
		TransferOrderRepoFactory
		MachineRepoFactory
		AssignmentRepoFactory
		InventoryRepoFactory
		AuditLogFactory
	}

	TransferUoWFactory interface {
		Create() TransferUoW
	}

	AssignmentUoW interface {
		TxManager
		MachineRepoFactory
		AssignmentRepoFactory
		ApprovalRepoFactory
		DebtRepoFactory
		InventoryRepoFactory
		AuditLogFactory
	}

	AssignmentUoWFactory interface {
		Create() AssignmentUoW
	}

	ApprovalUoW interface {
		TxManager
		ApprovalRepoFactory
		AssignmentRepoFactory
		MachineRepoFactory
		AuditLogFactory
	}

	ApprovalUoWFactory interface {
		Create() ApprovalUoW
	}

	LedgerUoW interface {
		TxManager
		DebtRepoFactory
		AuditLogFactory
	}

	LedgerUoWFactory interface {
		Create() LedgerUoW
	}
)
