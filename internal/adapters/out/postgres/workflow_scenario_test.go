package postgres_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	postgres_adapter "maintenance/internal/adapters/out/postgres"
	"maintenance/internal/adapters/out/postgres/directoryrepo"
	"maintenance/internal/adapters/out/postgres/inventoryrepo"
	"maintenance/internal/adapters/out/postgres/ledgerrepo"
	"maintenance/internal/adapters/out/postgres/machinerepo"
	"maintenance/internal/adapters/out/postgres/transferrepo"
	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type uowFactory[T any] func() T

func (f uowFactory[T]) Create() T {
	return f()
}

// recordingNotifier keeps notifications in memory.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification ports.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Type)
	}
	return out
}

// WorkflowScenarioTestSuite drives the command handlers against a real
// schema on sqlite.
type WorkflowScenarioTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	notifier *recordingNotifier

	center, branch kernel.UUID
	part           kernel.UUID
	machineID      kernel.UUID

	centerManager kernel.Actor
	technician    kernel.Actor
	branchManager kernel.Actor

	createOrder   commands.CreateTransferOrderCommandHandler
	receiveOrder  commands.ReceiveTransferOrderCommandHandler
	rejectOrder   commands.RejectTransferOrderCommandHandler
	assign        commands.AssignTechnicianCommandHandler
	start         commands.StartAssignmentCommandHandler
	updateParts   commands.UpdateAssignmentPartsCommandHandler
	requestApprov commands.RequestApprovalCommandHandler
	respond       commands.RespondApprovalCommandHandler
	complete      commands.CompleteAssignmentCommandHandler
	pay           commands.PayDebtCommandHandler
	transition    commands.TransitionMachineCommandHandler
}

func TestWorkflowScenarioTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowScenarioTestSuite))
}

func (s *WorkflowScenarioTestSuite) SetupTest() {
	s.ctx = context.Background()

	dsn := filepath.Join(s.T().TempDir(), "maintenance.db") + "?_busy_timeout=5000"
	db, err := postgres_adapter.Open(postgres_adapter.DriverSQLite, dsn, logger.Discard)
	s.Require().NoError(err)
	s.Require().NoError(postgres_adapter.Migrate(db))
	s.db = db

	s.center = kernel.NewUUID()
	s.branch = kernel.NewUUID()
	s.part = kernel.NewUUID()
	s.machineID = kernel.NewUUID()
	s.seed()

	s.centerManager = s.actor(kernel.RoleCenterManager, s.center)
	s.technician = s.actor(kernel.RoleCenterTechnician, s.center)
	s.branchManager = s.actor(kernel.RoleBranchManager, s.branch)

	factory := postgres_adapter.NewGormUnitOfWorkFactory(db)
	transferUoW := uowFactory[commands.TransferUoW](func() commands.TransferUoW { return factory.Create() })
	assignmentUoW := uowFactory[commands.AssignmentUoW](func() commands.AssignmentUoW { return factory.Create() })
	approvalUoW := uowFactory[commands.ApprovalUoW](func() commands.ApprovalUoW { return factory.Create() })
	ledgerUoW := uowFactory[commands.LedgerUoW](func() commands.LedgerUoW { return factory.Create() })
	machineUoW := uowFactory[commands.MachineUoW](func() commands.MachineUoW { return factory.Create() })

	branches := directoryrepo.NewCachedBranchDirectory(db, time.Minute)
	catalog := directoryrepo.NewGormPartCatalog(db)
	coordinator := services.NewRepairCoordinator()
	s.notifier = &recordingNotifier{}

	s.createOrder = commands.NewCreateTransferOrderCommandHandler(transferUoW, branches, catalog, s.notifier)
	s.receiveOrder = commands.NewReceiveTransferOrderCommandHandler(transferUoW, branches, s.notifier)
	s.rejectOrder = commands.NewRejectTransferOrderCommandHandler(transferUoW, s.notifier)
	s.assign = commands.NewAssignTechnicianCommandHandler(assignmentUoW, branches, coordinator, s.notifier)
	s.start = commands.NewStartAssignmentCommandHandler(assignmentUoW, coordinator)
	s.updateParts = commands.NewUpdateAssignmentPartsCommandHandler(assignmentUoW, catalog, coordinator)
	s.requestApprov = commands.NewRequestApprovalCommandHandler(assignmentUoW, coordinator, s.notifier)
	s.respond = commands.NewRespondApprovalCommandHandler(approvalUoW, coordinator, s.notifier)
	s.complete = commands.NewCompleteAssignmentCommandHandler(assignmentUoW, coordinator, s.notifier, zap.NewNop())
	s.pay = commands.NewPayDebtCommandHandler(ledgerUoW, s.notifier)
	s.transition = commands.NewTransitionMachineCommandHandler(machineUoW, branches)
}

func (s *WorkflowScenarioTestSuite) seed() {
	s.Require().NoError(s.db.Create(&[]directoryrepo.BranchDTO{
		{ID: s.center.Bytes(), Name: "Central workshop", Type: string(kernel.BranchTypeMaintenanceCenter)},
		{ID: s.branch.Bytes(), Name: "Downtown", Type: string(kernel.BranchTypeBranch)},
	}).Error)
	s.Require().NoError(s.db.Create(&directoryrepo.SparePartDTO{
		ID: s.part.Bytes(), Name: "Card reader", UnitPrice: decimal.RequireFromString("75.50"),
	}).Error)
	s.Require().NoError(s.db.Create(&inventoryrepo.PartStockDTO{
		PartID: s.part.Bytes(), BranchID: s.center.Bytes(), Quantity: 10,
	}).Error)

	m, err := machine.RestoreMachine(s.machineID, "POS-0001", "Ingenico", "Move5000",
		machine.Standby, s.branch, nil, nil, nil)
	s.Require().NoError(err)
	s.Require().NoError(machinerepo.NewGormMachineRepository(s.db, noTracker{}).Add(s.ctx, m))
}

type noTracker struct{}

func (noTracker) TrackAggregate(kernel.UUID, any) {}

func (s *WorkflowScenarioTestSuite) actor(role kernel.Role, branchID kernel.UUID) kernel.Actor {
	a, err := kernel.NewActor(kernel.NewUUID(), string(role), role, &branchID, nil)
	s.Require().NoError(err)
	return a
}

func (s *WorkflowScenarioTestSuite) machine() *machine.Machine {
	m, err := machinerepo.NewGormMachineRepository(s.db, noTracker{}).Get(s.ctx, s.machineID)
	s.Require().NoError(err)
	return m
}

func (s *WorkflowScenarioTestSuite) ship(actor kernel.Actor, from, to kernel.UUID) *transfer.Order {
	cmd, err := commands.NewCreateTransferOrderCommand(actor, transfer.TypeMachine, from, to,
		[]commands.TransferItemInput{{Serial: "POS-0001"}}, "")
	s.Require().NoError(err)
	order, err := s.createOrder.Handle(s.ctx, cmd)
	s.Require().NoError(err)
	return order
}

func (s *WorkflowScenarioTestSuite) receive(actor kernel.Actor, order *transfer.Order) {
	cmd, err := commands.NewReceiveTransferOrderCommand(actor, order.ID(), nil)
	s.Require().NoError(err)
	_, err = s.receiveOrder.Handle(s.ctx, cmd)
	s.Require().NoError(err)
}

// intake ships the machine to the center and opens a started repair with one
// part line.
func (s *WorkflowScenarioTestSuite) intake() *assignment.Assignment {
	s.receive(s.centerManager, s.ship(s.branchManager, s.branch, s.center))

	assignCmd, err := commands.NewAssignTechnicianCommand(s.centerManager, s.machineID, s.technician.ID())
	s.Require().NoError(err)
	a, err := s.assign.Handle(s.ctx, assignCmd)
	s.Require().NoError(err)

	startCmd, err := commands.NewStartAssignmentCommand(s.technician, a.ID())
	s.Require().NoError(err)
	_, err = s.start.Handle(s.ctx, startCmd)
	s.Require().NoError(err)

	partsCmd, err := commands.NewUpdateAssignmentPartsCommand(s.technician, a.ID(),
		[]commands.PartInput{{PartID: s.part, Quantity: 2}})
	s.Require().NoError(err)
	a, err = s.updateParts.Handle(s.ctx, partsCmd)
	s.Require().NoError(err)
	return a
}

func (s *WorkflowScenarioTestSuite) approve(a *assignment.Assignment) *approval.Request {
	reqCmd, err := commands.NewRequestApprovalCommand(s.technician, a.ID(), nil, "replace reader")
	s.Require().NoError(err)
	req, err := s.requestApprov.Handle(s.ctx, reqCmd)
	s.Require().NoError(err)

	respondCmd, err := commands.NewRespondApprovalCommand(s.branchManager, req.ID(), approval.Approve, "")
	s.Require().NoError(err)
	req, err = s.respond.Handle(s.ctx, respondCmd)
	s.Require().NoError(err)
	return req
}

func (s *WorkflowScenarioTestSuite) TestFullRepairCycle() {
	a := s.intake()
	s.True(a.TotalCost().Equal(kernel.MustMoney("151.00")))

	m := s.machine()
	s.Equal(machine.InProgress, m.Status())
	s.Require().NotNil(m.OriginBranchID())
	s.True(m.OriginBranchID().IsEqual(s.branch))

	s.approve(a)
	s.Equal(machine.RepairApproved, s.machine().Status())

	completeCmd, err := commands.NewCompleteAssignmentCommand(s.technician, a.ID(), "done")
	s.Require().NoError(err)
	result, err := s.complete.Handle(s.ctx, completeCmd)
	s.Require().NoError(err)
	s.Require().NotNil(result.Debt)
	s.True(result.Debt.DebtorBranchID().IsEqual(s.branch))
	s.True(result.Debt.CreditorBranchID().IsEqual(s.center))
	s.True(result.Debt.Amount().Equal(kernel.MustMoney("151.00")))
	s.Equal(machine.ReadyForReturn, s.machine().Status())

	stock, err := inventoryrepo.NewGormInventoryRepository(s.db).PartStock(s.ctx, s.part, s.center)
	s.Require().NoError(err)
	s.Equal(8, stock)

	payCmd, err := commands.NewPayDebtCommand(s.branchManager, result.Debt.ID(), "RCPT-1")
	s.Require().NoError(err)
	paid, err := s.pay.Handle(s.ctx, payCmd)
	s.Require().NoError(err)
	s.Equal(ledger.StatusPaid, paid.Status())
	s.True(paid.RemainingAmount().IsZero())

	s.receive(s.branchManager, s.ship(s.centerManager, s.center, s.branch))

	back := s.machine()
	s.Equal(machine.Standby, back.Status())
	s.True(back.BranchID().IsEqual(s.branch))
	s.Nil(back.OriginBranchID())
	s.Nil(back.CurrentAssignmentID())

	var logCount int64
	s.Require().NoError(s.db.Model(&machinerepo.StatusLogDTO{}).Where("machine_id = ?", s.machineID.Bytes()).Count(&logCount).Error)
	s.GreaterOrEqual(logCount, int64(7))

	var assignmentStatus string
	s.Require().NoError(s.db.Table("service_assignments").Select("status").Where("id = ?", a.ID().Bytes()).Scan(&assignmentStatus).Error)
	s.Equal(string(assignment.StatusReturned), assignmentStatus)

	s.Contains(s.notifier.types(), commands.NotifyDebtOpened)
	s.Contains(s.notifier.types(), commands.NotifyDebtPaid)
}

func (s *WorkflowScenarioTestSuite) TestReceiptNumberIsSingleUse() {
	a := s.intake()
	s.approve(a)
	completeCmd, err := commands.NewCompleteAssignmentCommand(s.technician, a.ID(), "")
	s.Require().NoError(err)
	result, err := s.complete.Handle(s.ctx, completeCmd)
	s.Require().NoError(err)

	other, err := ledger.OpenDebt(kernel.NewUUID(), s.branch, s.center, kernel.MustMoney("20"), "POS-0002", nil, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(ledgerrepo.NewGormDebtRepository(s.db, noTracker{}).Add(s.ctx, other))

	first, err := commands.NewPayDebtCommand(s.branchManager, result.Debt.ID(), "RCPT-7")
	s.Require().NoError(err)
	_, err = s.pay.Handle(s.ctx, first)
	s.Require().NoError(err)

	second, err := commands.NewPayDebtCommand(s.branchManager, other.ID(), "RCPT-7")
	s.Require().NoError(err)
	_, err = s.pay.Handle(s.ctx, second)
	s.Require().ErrorIs(err, errs.ErrConflict)

	again, err := commands.NewPayDebtCommand(s.branchManager, result.Debt.ID(), "RCPT-8")
	s.Require().NoError(err)
	_, err = s.pay.Handle(s.ctx, again)
	s.Require().Error(err)

	var payments int64
	s.Require().NoError(s.db.Model(&ledgerrepo.PaymentDTO{}).Count(&payments).Error)
	s.Equal(int64(1), payments)
}

func (s *WorkflowScenarioTestSuite) TestSecondApprovalResponseConflicts() {
	a := s.intake()
	req := s.approve(a)

	rejectCmd, err := commands.NewRespondApprovalCommand(s.branchManager, req.ID(), approval.Reject, "too late")
	s.Require().NoError(err)
	_, err = s.respond.Handle(s.ctx, rejectCmd)
	s.Require().ErrorIs(err, errs.ErrConflict)

	var status string
	s.Require().NoError(s.db.Table("approval_requests").Select("status").Where("id = ?", req.ID().Bytes()).Scan(&status).Error)
	s.Equal(string(approval.StatusApproved), status)
}

func (s *WorkflowScenarioTestSuite) TestSerialCannotJoinTwoPendingOrders() {
	s.ship(s.branchManager, s.branch, s.center)

	cmd, err := commands.NewCreateTransferOrderCommand(s.branchManager, transfer.TypeMachine, s.branch, s.center,
		[]commands.TransferItemInput{{Serial: "POS-0001"}}, "")
	s.Require().NoError(err)
	_, err = s.createOrder.Handle(s.ctx, cmd)
	s.Require().ErrorIs(err, errs.ErrConflict)
}

func (s *WorkflowScenarioTestSuite) TestRejectedOrderReleasesSerial() {
	order := s.ship(s.branchManager, s.branch, s.center)

	rejectCmd, err := commands.NewRejectTransferOrderCommand(s.centerManager, order.ID(), "no capacity")
	s.Require().NoError(err)
	_, err = s.rejectOrder.Handle(s.ctx, rejectCmd)
	s.Require().NoError(err)

	s.Equal(machine.Standby, s.machine().Status())
	s.ship(s.branchManager, s.branch, s.center)
}

// shipParts sends two lines of the seeded part from the center to the branch.
func (s *WorkflowScenarioTestSuite) shipParts(first, second int) (*transfer.Order, error) {
	cmd, err := commands.NewCreateTransferOrderCommand(s.centerManager, transfer.TypeSparePart, s.center, s.branch,
		[]commands.TransferItemInput{{PartID: &s.part, Quantity: first}, {PartID: &s.part, Quantity: second}}, "")
	s.Require().NoError(err)
	return s.createOrder.Handle(s.ctx, cmd)
}

func (s *WorkflowScenarioTestSuite) partStock(branchID kernel.UUID) int {
	qty, err := inventoryrepo.NewGormInventoryRepository(s.db).PartStock(s.ctx, s.part, branchID)
	s.Require().NoError(err)
	return qty
}

func (s *WorkflowScenarioTestSuite) updateOrder(order *transfer.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return transferrepo.NewGormTransferOrderRepository(tx, noTracker{}).Update(s.ctx, order, transfer.StatusPending)
	})
}

func (s *WorkflowScenarioTestSuite) TestPartLinesCannotOverbookStock() {
	_, err := s.shipParts(8, 8)
	s.Require().ErrorIs(err, errs.ErrConflict)

	var orders int64
	s.Require().NoError(s.db.Table("transfer_orders").Count(&orders).Error)
	s.Zero(orders)

	order, err := s.shipParts(6, 4)
	s.Require().NoError(err)
	s.receive(s.branchManager, order)
	s.Equal(0, s.partStock(s.center))
	s.Equal(10, s.partStock(s.branch))
}

func (s *WorkflowScenarioTestSuite) TestStaleOrderCopyCannotReceiveItemTwice() {
	order, err := s.shipParts(3, 2)
	s.Require().NoError(err)
	first, second := order.Items()[0], order.Items()[1]

	repo := transferrepo.NewGormTransferOrderRepository(s.db, noTracker{})
	stale, err := repo.Get(s.ctx, order.ID())
	s.Require().NoError(err)
	otherStale, err := repo.Get(s.ctx, order.ID())
	s.Require().NoError(err)

	cmd, err := commands.NewReceiveTransferOrderCommand(s.branchManager, order.ID(),
		[]transfer.Decision{{ItemID: first.ID(), Accept: true}})
	s.Require().NoError(err)
	_, err = s.receiveOrder.Handle(s.ctx, cmd)
	s.Require().NoError(err)
	s.Equal(7, s.partStock(s.center))
	s.Equal(3, s.partStock(s.branch))

	_, err = stale.Receive([]transfer.Decision{{ItemID: first.ID(), Accept: true}}, s.branchManager.ID(), time.Now().UTC())
	s.Require().NoError(err)
	s.Require().ErrorIs(s.updateOrder(stale), errs.ErrConflict)

	_, err = otherStale.Receive([]transfer.Decision{{ItemID: second.ID(), Accept: false}}, s.branchManager.ID(), time.Now().UTC())
	s.Require().NoError(err)
	s.Require().ErrorIs(s.updateOrder(otherStale), errs.ErrConflict)

	stored, err := repo.Get(s.ctx, order.ID())
	s.Require().NoError(err)
	s.Equal(transfer.StatusPending, stored.Status())
	s.Equal(transfer.ItemAccepted, stored.Items()[0].Status())
	s.Equal(transfer.ItemPending, stored.Items()[1].Status())

	_, err = s.receiveOrder.Handle(s.ctx, cmd)
	s.Require().ErrorIs(err, errs.ErrConflict)
	s.Equal(7, s.partStock(s.center))
	s.Equal(3, s.partStock(s.branch))
}

func (s *WorkflowScenarioTestSuite) TestCompletionWithoutApprovalIsRefused() {
	a := s.intake()

	completeCmd, err := commands.NewCompleteAssignmentCommand(s.technician, a.ID(), "")
	s.Require().NoError(err)
	_, err = s.complete.Handle(s.ctx, completeCmd)
	s.Require().ErrorIs(err, errs.ErrPreconditionFailed)

	var debts int64
	s.Require().NoError(s.db.Model(&ledgerrepo.DebtDTO{}).Count(&debts).Error)
	s.Zero(debts)
	s.Equal(machine.InProgress, s.machine().Status())
}

func (s *WorkflowScenarioTestSuite) TestGenericTransitionRejectsIllegalEdge() {
	cmd, err := commands.NewTransitionMachineCommand(s.branchManager, s.machineID, machine.ReadyForReturn, "")
	s.Require().NoError(err)
	_, err = s.transition.Handle(s.ctx, cmd)
	s.Require().ErrorIs(err, errs.ErrIllegalTransition)
	s.Equal(machine.Standby, s.machine().Status())

	cmd, err = commands.NewTransitionMachineCommand(s.branchManager, s.machineID, machine.Sold, "sold to merchant")
	s.Require().NoError(err)
	m, err := s.transition.Handle(s.ctx, cmd)
	s.Require().NoError(err)
	s.Equal(machine.Sold, m.Status())
}

func (s *WorkflowScenarioTestSuite) TestReadModels() {
	a := s.intake()
	reqCmd, err := commands.NewRequestApprovalCommand(s.technician, a.ID(), nil, "")
	s.Require().NoError(err)
	_, err = s.requestApprov.Handle(s.ctx, reqCmd)
	s.Require().NoError(err)

	kanbanQuery, err := queries.NewGetKanbanQuery(s.centerManager, nil)
	s.Require().NoError(err)
	columns, err := queries.NewGetKanbanQueryHandler(s.db).Handle(s.ctx, kanbanQuery)
	s.Require().NoError(err)
	found := false
	for _, col := range columns {
		if col.Status == machine.PendingApproval.String() {
			s.Len(col.Machines, 1)
			found = true
		}
	}
	s.True(found)

	approvalsQuery, err := queries.NewListApprovalsQuery(s.branchManager, nil)
	s.Require().NoError(err)
	approvals, err := queries.NewListApprovalsQueryHandler(s.db).Handle(s.ctx, approvalsQuery)
	s.Require().NoError(err)
	s.Require().Len(approvals, 1)
	s.Equal(string(approval.StatusPending), approvals[0].Status)
	s.True(approvals[0].Cost.Equal(decimal.RequireFromString("151")))

	mineQuery, err := queries.NewGetMyAssignmentsQuery(s.technician.ID())
	s.Require().NoError(err)
	mine, err := queries.NewGetMyAssignmentsQueryHandler(s.db).Handle(s.ctx, mineQuery)
	s.Require().NoError(err)
	s.Len(mine, 1)

	entitiesQuery, err := queries.NewListEntitiesQuery(kernel.EntityMachineLog, 50, 0)
	s.Require().NoError(err)
	rows, err := queries.NewListEntitiesQueryHandler(s.db).Handle(s.ctx, entitiesQuery)
	s.Require().NoError(err)
	s.NotEmpty(rows)
}

func (s *WorkflowScenarioTestSuite) TestPaymentSummaryPerScope() {
	debt, err := ledger.OpenDebt(kernel.NewUUID(), s.branch, s.center, kernel.MustMoney("40.25"), "POS-0009", nil, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(ledgerrepo.NewGormDebtRepository(s.db, noTracker{}).Add(s.ctx, debt))

	byBranch, err := queries.NewGetPaymentSummaryQuery(s.branchManager, ledger.ScopeOwedByBranch)
	s.Require().NoError(err)
	summary, err := queries.NewGetPaymentSummaryQueryHandler(s.db).Handle(s.ctx, byBranch)
	s.Require().NoError(err)
	s.Equal(int64(1), summary.OutstandingCount)
	s.True(summary.OutstandingTotal.Equal(decimal.RequireFromString("40.25")))

	toCenter, err := queries.NewGetPaymentSummaryQuery(s.branchManager, ledger.ScopeOwedToCenter)
	s.Require().NoError(err)
	summary, err = queries.NewGetPaymentSummaryQueryHandler(s.db).Handle(s.ctx, toCenter)
	s.Require().NoError(err)
	s.Zero(summary.OutstandingCount)
}
