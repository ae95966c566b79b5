package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork for every command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork scopes repositories to one database transaction. Repositories
// obtained after Begin share the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	Commit(ctx context.Context) error

	Rollback(ctx context.Context) error

	MachineRepository() MachineRepository

	TransferOrderRepository() TransferOrderRepository

	AssignmentRepository() AssignmentRepository

	ApprovalRepository() ApprovalRepository

	DebtRepository() DebtRepository

	InventoryRepository() InventoryRepository

	AuditLog() AuditLog
}
