package commands_test

import (
	"testing"
	"time"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transferFixture struct {
	branch, center kernel.Branch
	orders         *MockTransferOrderRepository
	machines       *MockMachineRepository
	assignments    *MockAssignmentRepository
	inventory      *MockInventoryRepository
	audit          *MockAuditLog
	uow            *MockUoW
	factory        *MockUoWFactory[commands.TransferUoW]
	branches       *MockBranchDirectory
	notifier       *MockNotifier
}

func newTransferFixture(t *testing.T) transferFixture {
	t.Helper()
	f := transferFixture{
		branch:      kernel.Branch{ID: kernel.NewUUID(), Name: "Downtown", Type: kernel.BranchTypeBranch},
		center:      kernel.Branch{ID: kernel.NewUUID(), Name: "Service Center", Type: kernel.BranchTypeMaintenanceCenter},
		orders:      new(MockTransferOrderRepository),
		machines:    new(MockMachineRepository),
		assignments: new(MockAssignmentRepository),
		inventory:   new(MockInventoryRepository),
		audit:       new(MockAuditLog),
		uow:         new(MockUoW),
		factory:     new(MockUoWFactory[commands.TransferUoW]),
		branches:    new(MockBranchDirectory),
		notifier:    new(MockNotifier),
	}
	f.factory.On("Create").Return(f.uow).Once()
	f.uow.On("TransferOrderRepository").Return(f.orders)
	f.uow.On("MachineRepository").Return(f.machines)
	f.uow.On("AssignmentRepository").Return(f.assignments)
	f.uow.On("InventoryRepository").Return(f.inventory)
	f.uow.On("AuditLog").Return(f.audit)
	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.branches.On("Get", mock.Anything, f.branch.ID).Return(f.branch, nil)
	f.branches.On("Get", mock.Anything, f.center.ID).Return(f.center, nil)
	return f
}

func (f transferFixture) pendingMachineOrder(t *testing.T, from, to kernel.UUID, serial string) *transfer.Order {
	t.Helper()
	item, err := transfer.NewSerialItem(serial, "PAX A920")
	require.NoError(t, err)
	o, err := transfer.NewOrder(kernel.NewUUID(), transfer.TypeMachine, from, to, []*transfer.Item{item}, "", kernel.NewUUID(), time.Now())
	require.NoError(t, err)
	return o
}

func TestCreateTransferOrderCommandHandler_Handle_MachineToCenter(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	m, err := machine.NewMachine(kernel.NewUUID(), "SN-1", "PAX", "A920", f.branch.ID)
	require.NoError(t, err)

	f.machines.On("GetBySerial", ctx, "SN-1").Return(m, nil).Once()
	f.orders.On("LockedSerials", ctx, transfer.TypeMachine, []string{"SN-1"}).Return([]string{}, nil).Once()
	f.orders.On("Add", ctx, mock.AnythingOfType("*transfer.Order")).Return(nil).Once()
	f.audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Type == commands.NotifyTransferCreated && n.BranchID.IsEqual(f.center.ID)
	})).Once()

	cmd, err := commands.NewCreateTransferOrderCommand(testActor(kernel.RoleBranchManager, f.branch.ID),
		transfer.TypeMachine, f.branch.ID, f.center.ID, []commands.TransferItemInput{{Serial: "SN-1"}}, "broken screen")
	require.NoError(t, err)

	handler := commands.NewCreateTransferOrderCommandHandler(f.factory, f.branches, new(MockPartCatalog), f.notifier)
	order, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, transfer.StatusPending, order.Status())
	assert.Regexp(t, `^TO-\d{8}-[0-9a-f]{8}$`, order.Number())
	require.Len(t, order.Items(), 1)
	assert.Equal(t, "SN-1", order.Items()[0].Serial())
	assert.Equal(t, machine.New, m.Status(), "machine does not move before receipt")
	f.orders.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCreateTransferOrderCommandHandler_Handle_SerialAlreadyLocked(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	m, err := machine.NewMachine(kernel.NewUUID(), "SN-1", "PAX", "A920", f.branch.ID)
	require.NoError(t, err)

	f.machines.On("GetBySerial", ctx, "SN-1").Return(m, nil).Once()
	f.orders.On("LockedSerials", ctx, transfer.TypeMachine, []string{"SN-1"}).Return([]string{"SN-1"}, nil).Once()

	cmd, err := commands.NewCreateTransferOrderCommand(testActor(kernel.RoleBranchManager, f.branch.ID),
		transfer.TypeMachine, f.branch.ID, f.center.ID, []commands.TransferItemInput{{Serial: "SN-1"}}, "")
	require.NoError(t, err)

	handler := commands.NewCreateTransferOrderCommandHandler(f.factory, f.branches, new(MockPartCatalog), f.notifier)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	f.orders.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCreateTransferOrderCommandHandler_Handle_PartsOverReserved(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	partID := kernel.NewUUID()
	catalog := new(MockPartCatalog)
	catalog.On("Get", ctx, partID).Return(ports.CatalogPart{ID: partID, Name: "Battery", UnitPrice: kernel.MustMoney("25")}, nil).Once()
	f.inventory.On("PartStock", ctx, partID, f.branch.ID).Return(10, nil).Once()
	f.orders.On("ReservedQuantity", ctx, partID, f.branch.ID).Return(8, nil).Once()

	cmd, err := commands.NewCreateTransferOrderCommand(testActor(kernel.RoleBranchManager, f.branch.ID),
		transfer.TypeSparePart, f.branch.ID, f.center.ID, []commands.TransferItemInput{{PartID: &partID, Quantity: 3}}, "")
	require.NoError(t, err)

	handler := commands.NewCreateTransferOrderCommandHandler(f.factory, f.branches, catalog, f.notifier)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Contains(t, err.Error(), "available 2")
}

func TestCreateTransferOrderCommandHandler_Handle_PartLinesShareStock(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	partID := kernel.NewUUID()
	catalog := new(MockPartCatalog)
	catalog.On("Get", ctx, partID).Return(ports.CatalogPart{ID: partID, Name: "Card reader", UnitPrice: kernel.MustMoney("75.50")}, nil).Twice()
	f.inventory.On("PartStock", ctx, partID, f.branch.ID).Return(10, nil).Twice()
	f.orders.On("ReservedQuantity", ctx, partID, f.branch.ID).Return(0, nil).Twice()

	cmd, err := commands.NewCreateTransferOrderCommand(testActor(kernel.RoleBranchManager, f.branch.ID),
		transfer.TypeSparePart, f.branch.ID, f.center.ID,
		[]commands.TransferItemInput{{PartID: &partID, Quantity: 8}, {PartID: &partID, Quantity: 8}}, "")
	require.NoError(t, err)

	handler := commands.NewCreateTransferOrderCommandHandler(f.factory, f.branches, catalog, f.notifier)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Contains(t, err.Error(), "requested 16, available 10")
	f.orders.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestCreateTransferOrderCommandHandler_Handle_PartLinesWithinStock(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	partID := kernel.NewUUID()
	catalog := new(MockPartCatalog)
	catalog.On("Get", ctx, partID).Return(ports.CatalogPart{ID: partID, Name: "Card reader", UnitPrice: kernel.MustMoney("75.50")}, nil).Twice()
	f.inventory.On("PartStock", ctx, partID, f.branch.ID).Return(10, nil).Twice()
	f.orders.On("ReservedQuantity", ctx, partID, f.branch.ID).Return(2, nil).Twice()
	f.orders.On("Add", ctx, mock.AnythingOfType("*transfer.Order")).Return(nil).Once()
	f.audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Once()

	cmd, err := commands.NewCreateTransferOrderCommand(testActor(kernel.RoleBranchManager, f.branch.ID),
		transfer.TypeSparePart, f.branch.ID, f.center.ID,
		[]commands.TransferItemInput{{PartID: &partID, Quantity: 5}, {PartID: &partID, Quantity: 3}}, "")
	require.NoError(t, err)

	handler := commands.NewCreateTransferOrderCommandHandler(f.factory, f.branches, catalog, f.notifier)
	order, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Len(t, order.Items(), 2)
	f.orders.AssertExpectations(t)
}

func TestCreateTransferOrderCommandHandler_Handle_OtherBranchIsForbidden(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)

	cmd, err := commands.NewCreateTransferOrderCommand(testActor(kernel.RoleBranchManager, kernel.NewUUID()),
		transfer.TypeMachine, f.branch.ID, f.center.ID, []commands.TransferItemInput{{Serial: "SN-1"}}, "")
	require.NoError(t, err)

	handler := commands.NewCreateTransferOrderCommandHandler(f.factory, f.branches, new(MockPartCatalog), f.notifier)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrForbidden)
	f.factory.AssertNotCalled(t, "Create")
}

func TestReceiveTransferOrderCommandHandler_Handle_IntakeAtCenter(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	m, err := machine.RestoreMachine(kernel.NewUUID(), "SN-1", "PAX", "A920", machine.Standby, f.branch.ID, nil, nil, nil)
	require.NoError(t, err)
	order := f.pendingMachineOrder(t, f.branch.ID, f.center.ID, "SN-1")

	mock.InOrder(
		f.orders.On("Get", ctx, order.ID()).Return(order, nil).Once(),
		f.machines.On("GetBySerial", ctx, "SN-1").Return(m, nil).Once(),
		f.machines.On("Update", ctx, m, machine.Standby).Return(nil).Once(),
		f.machines.On("AppendLog", ctx, mock.MatchedBy(func(l machine.StatusLog) bool {
			return l.From == machine.Standby && l.To == machine.ReceivedAtCenter
		})).Return(nil).Once(),
		f.orders.On("Update", ctx, order, transfer.StatusPending).Return(nil).Once(),
		f.audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
	)
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Type == commands.NotifyTransferReceived && n.BranchID.IsEqual(f.branch.ID)
	})).Once()

	cmd, err := commands.NewReceiveTransferOrderCommand(testActor(kernel.RoleCenterManager, f.center.ID), order.ID(), nil)
	require.NoError(t, err)

	handler := commands.NewReceiveTransferOrderCommandHandler(f.factory, f.branches, f.notifier)
	received, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCompleted, received.Status())
	assert.Equal(t, machine.ReceivedAtCenter, m.Status())
	assert.Equal(t, f.center.ID, m.BranchID())
	require.NotNil(t, m.OriginBranchID())
	assert.Equal(t, f.branch.ID, *m.OriginBranchID())
	f.machines.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestReceiveTransferOrderCommandHandler_Handle_ReturnClosesAssignment(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	assignmentID, technicianID := kernel.NewUUID(), kernel.NewUUID()
	m, err := machine.RestoreMachine(kernel.NewUUID(), "SN-1", "PAX", "A920", machine.ReadyForReturn,
		f.center.ID, &f.branch.ID, &assignmentID, &technicianID)
	require.NoError(t, err)
	at := time.Now()
	a, err := assignment.RestoreAssignment(assignmentID, m.ID(), "SN-1", technicianID, f.center.ID, f.branch.ID,
		assignment.StatusCompleted, nil, kernel.ZeroMoney(), assignment.ApprovalNone, kernel.ZeroMoney(),
		nil, "", nil, at, &at, &at, 4)
	require.NoError(t, err)
	order := f.pendingMachineOrder(t, f.center.ID, f.branch.ID, "SN-1")

	f.orders.On("Get", ctx, order.ID()).Return(order, nil).Once()
	f.machines.On("GetBySerial", ctx, "SN-1").Return(m, nil).Once()
	f.assignments.On("FindLatestCompletedByMachine", ctx, m.ID()).Return(a, nil).Once()
	f.assignments.On("Update", ctx, a, assignment.StatusCompleted).Return(nil).Once()
	f.machines.On("Update", ctx, m, machine.ReadyForReturn).Return(nil).Once()
	f.machines.On("AppendLog", ctx, mock.AnythingOfType("machine.StatusLog")).Return(nil).Twice()
	f.orders.On("Update", ctx, order, transfer.StatusPending).Return(nil).Once()
	f.audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Once()

	cmd, err := commands.NewReceiveTransferOrderCommand(testActor(kernel.RoleBranchStaff, f.branch.ID), order.ID(), nil)
	require.NoError(t, err)

	handler := commands.NewReceiveTransferOrderCommandHandler(f.factory, f.branches, f.notifier)
	_, err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, machine.Standby, m.Status())
	assert.Equal(t, f.branch.ID, m.BranchID())
	assert.Nil(t, m.CurrentAssignmentID())
	assert.Equal(t, assignment.StatusReturned, a.Status())
	f.machines.AssertExpectations(t)
	f.assignments.AssertExpectations(t)
}

func TestReceiveTransferOrderCommandHandler_Handle_PartialReceipt(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	first, err := transfer.NewSerialItem("SIM-1", "SIM card")
	require.NoError(t, err)
	second, err := transfer.NewSerialItem("SIM-2", "SIM card")
	require.NoError(t, err)
	order, err := transfer.NewOrder(kernel.NewUUID(), transfer.TypeSim, f.branch.ID, f.center.ID,
		[]*transfer.Item{first, second}, "", kernel.NewUUID(), time.Now())
	require.NoError(t, err)

	f.orders.On("Get", ctx, order.ID()).Return(order, nil).Once()
	f.inventory.On("MoveSim", ctx, "SIM-1", f.branch.ID, f.center.ID).Return(nil).Once()
	f.orders.On("Update", ctx, order, transfer.StatusPending).Return(nil).Once()
	f.audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Once()

	cmd, err := commands.NewReceiveTransferOrderCommand(testActor(kernel.RoleCenterManager, f.center.ID), order.ID(),
		[]transfer.Decision{{ItemID: first.ID(), Accept: true}})
	require.NoError(t, err)

	handler := commands.NewReceiveTransferOrderCommandHandler(f.factory, f.branches, f.notifier)
	received, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, transfer.StatusPending, received.Status())
	assert.Equal(t, transfer.ItemAccepted, first.Status())
	assert.Equal(t, transfer.ItemPending, second.Status())
	f.inventory.AssertNotCalled(t, "MoveSim", mock.Anything, "SIM-2", mock.Anything, mock.Anything)
}

func TestRejectTransferOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	order := f.pendingMachineOrder(t, f.branch.ID, f.center.ID, "SN-1")

	f.orders.On("Get", ctx, order.ID()).Return(order, nil).Once()
	f.orders.On("Update", ctx, order, transfer.StatusPending).Return(nil).Once()
	f.audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Type == commands.NotifyTransferRejected && n.BranchID.IsEqual(f.branch.ID)
	})).Once()

	cmd, err := commands.NewRejectTransferOrderCommand(testActor(kernel.RoleCenterManager, f.center.ID), order.ID(), "wrong machine")
	require.NoError(t, err)

	handler := commands.NewRejectTransferOrderCommandHandler(f.factory, f.notifier)
	rejected, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, transfer.StatusRejected, rejected.Status())
	assert.Equal(t, "wrong machine", rejected.RejectionReason())
	for _, it := range rejected.Items() {
		assert.Equal(t, transfer.ItemRejected, it.Status())
	}
	f.machines.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectTransferOrderCommandHandler_Handle_SourceCannotReject(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	order := f.pendingMachineOrder(t, f.branch.ID, f.center.ID, "SN-1")
	f.orders.On("Get", ctx, order.ID()).Return(order, nil).Once()

	cmd, err := commands.NewRejectTransferOrderCommand(testActor(kernel.RoleBranchManager, f.branch.ID), order.ID(), "changed my mind")
	require.NoError(t, err)

	handler := commands.NewRejectTransferOrderCommandHandler(f.factory, f.notifier)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrForbidden)
	assert.True(t, order.IsPending())
}

func TestNewRejectTransferOrderCommand_ReasonIsRequired(t *testing.T) {
	_, err := commands.NewRejectTransferOrderCommand(globalActor(), kernel.NewUUID(), "  ")
	require.ErrorIs(t, err, transfer.ErrReasonIsRequired)
}

func TestCancelTransferOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newTransferFixture(t)
	order := f.pendingMachineOrder(t, f.branch.ID, f.center.ID, "SN-1")

	f.orders.On("Get", ctx, order.ID()).Return(order, nil).Once()
	f.orders.On("Update", ctx, order, transfer.StatusPending).Return(nil).Once()
	f.audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Once()

	cmd, err := commands.NewCancelTransferOrderCommand(testActor(kernel.RoleBranchManager, f.branch.ID), order.ID())
	require.NoError(t, err)

	handler := commands.NewCancelTransferOrderCommandHandler(f.factory, f.notifier)
	cancelled, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCancelled, cancelled.Status())
}
