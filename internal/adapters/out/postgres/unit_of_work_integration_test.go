package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	postgres_adapter "maintenance/internal/adapters/out/postgres"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// UnitOfWorkIntegrationTestSuite runs the unit of work and the repositories
// against a real PostgreSQL server.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   *postgres_adapter.GormUnitOfWorkFactory
	tables    []string
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(postgres_adapter.DriverPostgres, dsn, logger.Discard)
	suite.Require().NoError(err)
	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.db = db

	for _, model := range postgres_adapter.Models() {
		if t, ok := model.(schema.Tabler); ok {
			suite.tables = append(suite.tables, t.TableName())
		}
	}

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE " + strings.Join(suite.tables, ", ") + " CASCADE").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.MachineRepository())
	suite.NotNil(uow1.TransferOrderRepository())
	suite.NotNil(uow1.AssignmentRepository())
	suite.NotNil(uow1.ApprovalRepository())
	suite.NotNil(uow1.DebtRepository())
	suite.NotNil(uow1.InventoryRepository())
	suite.NotNil(uow1.AuditLog())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_MultiRepositoryCommit() {
	ctx := context.Background()
	uow := suite.factory.Create().(*postgres_adapter.GormUnitOfWork)

	m := newMachine(suite, "SN-100")
	order := newMachineOrder(suite, m.BranchID(), "SN-100")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.MachineRepository().Add(ctx, m))
	suite.Require().NoError(uow.TransferOrderRepository().Add(ctx, order))
	suite.Equal(2, uow.TrackedCount())
	suite.Require().NoError(uow.Commit(ctx))

	fresh := suite.factory.Create()
	got, err := fresh.MachineRepository().GetBySerial(ctx, "SN-100")
	suite.Require().NoError(err)
	suite.True(got.ID().IsEqual(m.ID()))

	gotOrder, err := fresh.TransferOrderRepository().Get(ctx, order.ID())
	suite.Require().NoError(err)
	suite.Len(gotOrder.Items(), 1)
	suite.Equal(transfer.StatusPending, gotOrder.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsAllWrites() {
	ctx := context.Background()
	uow := suite.factory.Create().(*postgres_adapter.GormUnitOfWork)

	m := newMachine(suite, "SN-200")
	order := newMachineOrder(suite, m.BranchID(), "SN-200")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.MachineRepository().Add(ctx, m))
	suite.Require().NoError(uow.TransferOrderRepository().Add(ctx, order))
	suite.Require().NoError(uow.Rollback(ctx))
	suite.Zero(uow.TrackedCount())

	fresh := suite.factory.Create()
	_, err := fresh.MachineRepository().Get(ctx, m.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	_, err = fresh.TransferOrderRepository().Get(ctx, order.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_Isolation() {
	ctx := context.Background()
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	m1 := newMachine(suite, "SN-301")
	m2 := newMachine(suite, "SN-302")

	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))
	suite.Require().NoError(uow1.MachineRepository().Add(ctx, m1))
	suite.Require().NoError(uow2.MachineRepository().Add(ctx, m2))

	_, err := uow1.MachineRepository().Get(ctx, m2.ID())
	suite.Require().Error(err, "UOW1 should not see uncommitted machine of UOW2")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	fresh := suite.factory.Create()
	_, err = fresh.MachineRepository().Get(ctx, m1.ID())
	suite.Require().NoError(err)
	_, err = fresh.MachineRepository().Get(ctx, m2.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentPaymentOfOneDebt() {
	ctx := context.Background()
	debt := suite.addDebt("SN-400")

	results := suite.race(2, func(i int) error {
		uow := suite.factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback(ctx)

		d, err := uow.DebtRepository().Get(ctx, debt.ID())
		if err != nil {
			return err
		}
		payment, err := d.Pay(fmt.Sprintf("RCPT-40%d", i), kernel.NewUUID(), d.DebtorBranchID(), time.Now().UTC())
		if err != nil {
			return err
		}
		if err := uow.DebtRepository().Update(ctx, d, ledger.StatusPendingPayment); err != nil {
			return err
		}
		if err := uow.DebtRepository().AddPayment(ctx, payment); err != nil {
			return err
		}
		return uow.Commit(ctx)
	})

	suite.exactlyOneWins(results)

	var payments int64
	suite.Require().NoError(suite.db.Table("payments").Where("debt_id = ?", debt.ID().Bytes()).Count(&payments).Error)
	suite.Equal(int64(1), payments)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentReuseOfReceiptNumber() {
	ctx := context.Background()
	debts := []*ledger.Debt{suite.addDebt("SN-501"), suite.addDebt("SN-502")}

	results := suite.race(2, func(i int) error {
		uow := suite.factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback(ctx)

		d, err := uow.DebtRepository().Get(ctx, debts[i].ID())
		if err != nil {
			return err
		}
		payment, err := d.Pay("RCPT-SHARED", kernel.NewUUID(), d.DebtorBranchID(), time.Now().UTC())
		if err != nil {
			return err
		}
		if err := uow.DebtRepository().Update(ctx, d, ledger.StatusPendingPayment); err != nil {
			return err
		}
		if err := uow.DebtRepository().AddPayment(ctx, payment); err != nil {
			return err
		}
		return uow.Commit(ctx)
	})

	suite.exactlyOneWins(results)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentApprovalResponses() {
	ctx := context.Background()
	subject, err := approval.BatchSubject([]string{"SN-600"})
	suite.Require().NoError(err)
	req, err := approval.NewRequest(kernel.NewUUID(), subject, kernel.NewUUID(), kernel.NewUUID(),
		kernel.ZeroMoney(), nil, "", kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().ApprovalRepository().Add(ctx, req))

	decisions := []approval.Decision{approval.Approve, approval.Reject}
	results := suite.race(2, func(i int) error {
		uow := suite.factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback(ctx)

		r, err := uow.ApprovalRepository().Get(ctx, req.ID())
		if err != nil {
			return err
		}
		if err := r.Respond(decisions[i], kernel.NewUUID(), "reason", time.Now().UTC()); err != nil {
			return err
		}
		if err := uow.ApprovalRepository().Update(ctx, r, approval.StatusPending); err != nil {
			return err
		}
		return uow.Commit(ctx)
	})

	suite.exactlyOneWins(results)

	pending, err := suite.factory.Create().ApprovalRepository().HasPending(ctx, subject.Key())
	suite.Require().NoError(err)
	suite.False(pending)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentOrdersForOneSerial() {
	ctx := context.Background()
	branch := kernel.NewUUID()

	results := suite.race(2, func(int) error {
		order := newMachineOrder(suite, branch, "SN-700")
		uow := suite.factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback(ctx)

		if err := uow.TransferOrderRepository().Add(ctx, order); err != nil {
			return err
		}
		return uow.Commit(ctx)
	})

	suite.exactlyOneWins(results)

	locked, err := suite.factory.Create().TransferOrderRepository().LockedSerials(ctx, transfer.TypeMachine, []string{"SN-700"})
	suite.Require().NoError(err)
	suite.Equal([]string{"SN-700"}, locked)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentPartialReceiptsOfOneItem() {
	ctx := context.Background()
	from, to, partID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	suite.Require().NoError(suite.factory.Create().InventoryRepository().AddPartStock(ctx, partID, from, 10))

	first, err := transfer.NewPartItem(partID, "Card reader", 3)
	suite.Require().NoError(err)
	second, err := transfer.NewPartItem(partID, "Card reader", 2)
	suite.Require().NoError(err)
	order, err := transfer.NewOrder(kernel.NewUUID(), transfer.TypeSparePart, from, to,
		[]*transfer.Item{first, second}, "", kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().TransferOrderRepository().Add(ctx, order))

	results := suite.race(2, func(int) error {
		uow := suite.factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback(ctx)

		o, err := uow.TransferOrderRepository().Get(ctx, order.ID())
		if err != nil {
			return err
		}
		accepted, err := o.Receive([]transfer.Decision{{ItemID: first.ID(), Accept: true}}, kernel.NewUUID(), time.Now().UTC())
		if err != nil {
			return err
		}
		if err := uow.TransferOrderRepository().Update(ctx, o, transfer.StatusPending); err != nil {
			return err
		}
		for _, it := range accepted {
			taken, err := uow.InventoryRepository().TakePartStock(ctx, partID, from, it.Quantity())
			if err != nil {
				return err
			}
			if !taken {
				return errs.NewConflictError("spare part", "stock moved")
			}
			if err := uow.InventoryRepository().AddPartStock(ctx, partID, to, it.Quantity()); err != nil {
				return err
			}
		}
		return uow.Commit(ctx)
	})

	suite.exactlyOneWins(results)

	inventory := suite.factory.Create().InventoryRepository()
	source, err := inventory.PartStock(ctx, partID, from)
	suite.Require().NoError(err)
	destination, err := inventory.PartStock(ctx, partID, to)
	suite.Require().NoError(err)
	suite.Equal(7, source)
	suite.Equal(3, destination)

	stored, err := suite.factory.Create().TransferOrderRepository().Get(ctx, order.ID())
	suite.Require().NoError(err)
	suite.Equal(transfer.StatusPending, stored.Status())
	suite.Equal(transfer.ItemPending, stored.Items()[1].Status())
}

// race runs fn concurrently n times and collects the results by index.
func (suite *UnitOfWorkIntegrationTestSuite) race(n int, fn func(i int) error) []error {
	results := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = fn(i)
		}()
	}
	close(start)
	wg.Wait()
	return results
}

func (suite *UnitOfWorkIntegrationTestSuite) exactlyOneWins(results []error) {
	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		suite.ErrorIs(err, errs.ErrConflict)
	}
	suite.Equal(1, wins, "exactly one concurrent writer should succeed: %v", results)
}

func (suite *UnitOfWorkIntegrationTestSuite) addDebt(serial string) *ledger.Debt {
	assignmentID := kernel.NewUUID()
	d, err := ledger.OpenDebt(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		kernel.MustMoney("99.90"), serial, &assignmentID, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().DebtRepository().Add(context.Background(), d))
	return d
}

func newMachine(suite *UnitOfWorkIntegrationTestSuite, serial string) *machine.Machine {
	m, err := machine.RestoreMachine(kernel.NewUUID(), serial, "PAX", "A920",
		machine.Standby, kernel.NewUUID(), nil, nil, nil)
	suite.Require().NoError(err)
	return m
}

func newMachineOrder(suite *UnitOfWorkIntegrationTestSuite, from kernel.UUID, serial string) *transfer.Order {
	item, err := transfer.NewSerialItem(serial, "")
	suite.Require().NoError(err)
	order, err := transfer.NewOrder(kernel.NewUUID(), transfer.TypeMachine, from, kernel.NewUUID(),
		[]*transfer.Item{item}, "", kernel.NewUUID(), time.Now().UTC())
	suite.Require().NoError(err)
	return order
}

var _ ports.UnitOfWorkFactory = (*postgres_adapter.GormUnitOfWorkFactory)(nil)
