package commands_test

import (
	"context"
	"time"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockMachineRepository struct{ mock.Mock }

func (m *MockMachineRepository) Add(ctx context.Context, mc *machine.Machine) error {
	return m.Called(ctx, mc).Error(0)
}

func (m *MockMachineRepository) Get(ctx context.Context, id kernel.UUID) (*machine.Machine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*machine.Machine), args.Error(1)
}

func (m *MockMachineRepository) GetBySerial(ctx context.Context, serial string) (*machine.Machine, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*machine.Machine), args.Error(1)
}

func (m *MockMachineRepository) Update(ctx context.Context, mc *machine.Machine, expected machine.Status) error {
	return m.Called(ctx, mc, expected).Error(0)
}

func (m *MockMachineRepository) AppendLog(ctx context.Context, entry machine.StatusLog) error {
	return m.Called(ctx, entry).Error(0)
}

type MockTransferOrderRepository struct{ mock.Mock }

func (m *MockTransferOrderRepository) Add(ctx context.Context, o *transfer.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockTransferOrderRepository) Get(ctx context.Context, id kernel.UUID) (*transfer.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Order), args.Error(1)
}

func (m *MockTransferOrderRepository) Update(ctx context.Context, o *transfer.Order, expected transfer.Status) error {
	return m.Called(ctx, o, expected).Error(0)
}

func (m *MockTransferOrderRepository) LockedSerials(ctx context.Context, t transfer.Type, serials []string) ([]string, error) {
	args := m.Called(ctx, t, serials)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTransferOrderRepository) ReservedQuantity(ctx context.Context, partID, branchID kernel.UUID) (int, error) {
	args := m.Called(ctx, partID, branchID)
	return args.Int(0), args.Error(1)
}

type MockAssignmentRepository struct{ mock.Mock }

func (m *MockAssignmentRepository) Add(ctx context.Context, a *assignment.Assignment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Update(ctx context.Context, a *assignment.Assignment, expected assignment.Status) error {
	return m.Called(ctx, a, expected).Error(0)
}

func (m *MockAssignmentRepository) FindActiveByMachine(ctx context.Context, machineID kernel.UUID) (*assignment.Assignment, error) {
	args := m.Called(ctx, machineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindLatestCompletedByMachine(ctx context.Context, machineID kernel.UUID) (*assignment.Assignment, error) {
	args := m.Called(ctx, machineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Assignment), args.Error(1)
}

type MockApprovalRepository struct{ mock.Mock }

func (m *MockApprovalRepository) Add(ctx context.Context, r *approval.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockApprovalRepository) Get(ctx context.Context, id kernel.UUID) (*approval.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*approval.Request), args.Error(1)
}

func (m *MockApprovalRepository) Update(ctx context.Context, r *approval.Request, expected approval.Status) error {
	return m.Called(ctx, r, expected).Error(0)
}

func (m *MockApprovalRepository) HasPending(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockApprovalRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*approval.Request, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*approval.Request), args.Error(1)
}

type MockDebtRepository struct{ mock.Mock }

func (m *MockDebtRepository) Add(ctx context.Context, d *ledger.Debt) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDebtRepository) Get(ctx context.Context, id kernel.UUID) (*ledger.Debt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Debt), args.Error(1)
}

func (m *MockDebtRepository) Update(ctx context.Context, d *ledger.Debt, expected ledger.Status) error {
	return m.Called(ctx, d, expected).Error(0)
}

func (m *MockDebtRepository) ReceiptExists(ctx context.Context, receipt string) (bool, error) {
	args := m.Called(ctx, receipt)
	return args.Bool(0), args.Error(1)
}

func (m *MockDebtRepository) AddPayment(ctx context.Context, p *ledger.Payment) error {
	return m.Called(ctx, p).Error(0)
}

type MockInventoryRepository struct{ mock.Mock }

func (m *MockInventoryRepository) SimBranch(ctx context.Context, serial string) (kernel.UUID, error) {
	args := m.Called(ctx, serial)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

func (m *MockInventoryRepository) MoveSim(ctx context.Context, serial string, from, to kernel.UUID) error {
	return m.Called(ctx, serial, from, to).Error(0)
}

func (m *MockInventoryRepository) PartStock(ctx context.Context, partID, branchID kernel.UUID) (int, error) {
	args := m.Called(ctx, partID, branchID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) TakePartStock(ctx context.Context, partID, branchID kernel.UUID, qty int) (bool, error) {
	args := m.Called(ctx, partID, branchID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) AddPartStock(ctx context.Context, partID, branchID kernel.UUID, qty int) error {
	return m.Called(ctx, partID, branchID, qty).Error(0)
}

type MockAuditLog struct{ mock.Mock }

func (m *MockAuditLog) LogAction(ctx context.Context, entry ports.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) {
	m.Called(ctx, n)
}

type MockBranchDirectory struct{ mock.Mock }

func (m *MockBranchDirectory) Get(ctx context.Context, id kernel.UUID) (kernel.Branch, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(kernel.Branch), args.Error(1)
}

type MockPartCatalog struct{ mock.Mock }

func (m *MockPartCatalog) Get(ctx context.Context, id kernel.UUID) (ports.CatalogPart, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.CatalogPart), args.Error(1)
}

// MockUoW satisfies every narrow unit-of-work interface of the commands
// package.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) MachineRepository() ports.MachineRepository {
	return m.Called().Get(0).(ports.MachineRepository)
}

func (m *MockUoW) TransferOrderRepository() ports.TransferOrderRepository {
	return m.Called().Get(0).(ports.TransferOrderRepository)
}

func (m *MockUoW) AssignmentRepository() ports.AssignmentRepository {
	return m.Called().Get(0).(ports.AssignmentRepository)
}

func (m *MockUoW) ApprovalRepository() ports.ApprovalRepository {
	return m.Called().Get(0).(ports.ApprovalRepository)
}

func (m *MockUoW) DebtRepository() ports.DebtRepository {
	return m.Called().Get(0).(ports.DebtRepository)
}

func (m *MockUoW) InventoryRepository() ports.InventoryRepository {
	return m.Called().Get(0).(ports.InventoryRepository)
}

func (m *MockUoW) AuditLog() ports.AuditLog {
	return m.Called().Get(0).(ports.AuditLog)
}

type MockUoWFactory[T any] struct{ mock.Mock }

func (m *MockUoWFactory[T]) Create() T {
	return m.Called().Get(0).(T)
}

var (
	_ commands.MachineUoW    = (*MockUoW)(nil)
	_ commands.TransferUoW   = (*MockUoW)(nil)
	_ commands.AssignmentUoW = (*MockUoW)(nil)
	_ commands.ApprovalUoW   = (*MockUoW)(nil)
	_ commands.LedgerUoW     = (*MockUoW)(nil)
)

func testActor(role kernel.Role, branchID kernel.UUID) kernel.Actor {
	actor, err := kernel.NewActor(kernel.NewUUID(), "tester", role, &branchID, nil)
	if err != nil {
		panic(err)
	}
	return actor
}

func globalActor() kernel.Actor {
	actor, err := kernel.NewActor(kernel.NewUUID(), "admin", kernel.RoleSuperAdmin, nil, nil)
	if err != nil {
		panic(err)
	}
	return actor
}
