// Package postgres provides the GORM-based Unit of Work that scopes every
// repository of the maintenance workflow to one database transaction.
//
// A single business operation typically touches several aggregates: receiving
// a transfer order moves machines, closes a service assignment and updates
// the order. All of those writes go through repositories obtained from the
// same GormUnitOfWork after Begin, so they commit or roll back together.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	if err := uow.MachineRepository().Update(ctx, m, machine.InTransit); err != nil {
//	    return err
//	}
//	if err := uow.TransferOrderRepository().Update(ctx, order, transfer.StatusPending); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency:
//   - Each UnitOfWork instance owns its transaction; goroutines must not share one
//   - Repository updates are status-predicated (see dbutil.CompareAndSwap), so
//     two transactions racing on the same row cannot both succeed
package postgres

import (
	"context"

	"maintenance/internal/adapters/out/postgres/approvalrepo"
	"maintenance/internal/adapters/out/postgres/assignmentrepo"
	"maintenance/internal/adapters/out/postgres/auditrepo"
	"maintenance/internal/adapters/out/postgres/inventoryrepo"
	"maintenance/internal/adapters/out/postgres/ledgerrepo"
	"maintenance/internal/adapters/out/postgres/machinerepo"
	"maintenance/internal/adapters/out/postgres/transferrepo"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one GORM
// connection pool.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db)
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory whose units of work share db.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a fresh unit of work with no open transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and records the
// aggregates written through its repositories.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. Calling it again while a transaction is open
// is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes the transaction. It fails with gorm.ErrInvalidTransaction
// when none is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. After a successful Commit there is
// nothing to roll back and gorm.ErrInvalidTransaction is returned, which
// makes a deferred Rollback safe to ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// conn returns the open transaction, or the pool when none is open.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) MachineRepository() ports.MachineRepository {
	return machinerepo.NewGormMachineRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) TransferOrderRepository() ports.TransferOrderRepository {
	return transferrepo.NewGormTransferOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) AssignmentRepository() ports.AssignmentRepository {
	return assignmentrepo.NewGormAssignmentRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) ApprovalRepository() ports.ApprovalRepository {
	return approvalrepo.NewGormApprovalRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) DebtRepository() ports.DebtRepository {
	return ledgerrepo.NewGormDebtRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) InventoryRepository() ports.InventoryRepository {
	return inventoryrepo.NewGormInventoryRepository(uow.conn())
}

func (uow *GormUnitOfWork) AuditLog() ports.AuditLog {
	return auditrepo.NewGormAuditLog(uow.conn())
}

// TrackAggregate registers an aggregate written within this unit of work.
// Repositories call it after every successful Add or Update.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedCount reports how many aggregate writes the current transaction
// made.
func (uow *GormUnitOfWork) TrackedCount() int {
	return len(uow.trackedAggregates)
}
