package commands_test

import (
	"testing"
	"time"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMachineUoW(ctx any, machines *MockMachineRepository, audit *MockAuditLog) *MockUoWFactory[commands.MachineUoW] {
	uow := new(MockUoW)
	uow.On("MachineRepository").Return(machines)
	uow.On("AuditLog").Return(audit)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Maybe()
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockUoWFactory[commands.MachineUoW])
	factory.On("Create").Return(uow).Once()
	return factory
}

func TestTransitionMachineCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	center := kernel.NewUUID()
	m, err := machine.RestoreMachine(kernel.NewUUID(), "SN-9", "PAX", "S920", machine.ReceivedAtCenter, center, nil, nil, nil)
	require.NoError(t, err)

	machines := new(MockMachineRepository)
	audit := new(MockAuditLog)
	mock.InOrder(
		machines.On("Get", ctx, m.ID()).Return(m, nil).Once(),
		machines.On("Update", ctx, m, machine.ReceivedAtCenter).Return(nil).Once(),
		machines.On("AppendLog", ctx, mock.MatchedBy(func(l machine.StatusLog) bool {
			return l.From == machine.ReceivedAtCenter && l.To == machine.UnderInspection && l.Notes == "visual check"
		})).Return(nil).Once(),
		audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once(),
	)

	cmd, err := commands.NewTransitionMachineCommand(testActor(kernel.RoleCenterManager, center), m.ID(), machine.UnderInspection, "visual check")
	require.NoError(t, err)

	handler := commands.NewTransitionMachineCommandHandler(newMachineUoW(ctx, machines, audit), new(MockBranchDirectory))
	moved, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, machine.UnderInspection, moved.Status())
	machines.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestTransitionMachineCommandHandler_Handle_IllegalEdge(t *testing.T) {
	ctx := t.Context()
	branch := kernel.NewUUID()
	m, err := machine.RestoreMachine(kernel.NewUUID(), "SN-9", "PAX", "S920", machine.Sold, branch, nil, nil, nil)
	require.NoError(t, err)

	machines := new(MockMachineRepository)
	machines.On("Get", ctx, m.ID()).Return(m, nil).Once()

	cmd, err := commands.NewTransitionMachineCommand(testActor(kernel.RoleBranchManager, branch), m.ID(), machine.Standby, "")
	require.NoError(t, err)

	handler := commands.NewTransitionMachineCommandHandler(newMachineUoW(ctx, machines, new(MockAuditLog)), new(MockBranchDirectory))
	_, err = handler.Handle(ctx, cmd)

	var trErr *errs.TransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, "SOLD", trErr.From)
	assert.Equal(t, "STANDBY", trErr.To)
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, machine.Sold, m.Status())
	machines.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionMachineCommandHandler_Handle_CoordinatedTargetIsForbidden(t *testing.T) {
	ctx := t.Context()
	for _, target := range []machine.Status{machine.Assigned, machine.PendingApproval, machine.RepairApproved} {
		t.Run(target.String(), func(t *testing.T) {
			factory := new(MockUoWFactory[commands.MachineUoW])
			cmd, err := commands.NewTransitionMachineCommand(globalActor(), kernel.NewUUID(), target, "")
			require.NoError(t, err)

			_, err = commands.NewTransitionMachineCommandHandler(factory, new(MockBranchDirectory)).Handle(ctx, cmd)

			require.ErrorIs(t, err, errs.ErrForbidden)
			factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestTransitionMachineCommandHandler_Handle_IntakeOnlyAtCenter(t *testing.T) {
	ctx := t.Context()
	branch := kernel.Branch{ID: kernel.NewUUID(), Name: "Downtown", Type: kernel.BranchTypeBranch}
	center := kernel.Branch{ID: kernel.NewUUID(), Name: "Service Center", Type: kernel.BranchTypeMaintenanceCenter}
	branches := new(MockBranchDirectory)
	branches.On("Get", ctx, branch.ID).Return(branch, nil)
	branches.On("Get", ctx, center.ID).Return(center, nil)

	t.Run("regular branch", func(t *testing.T) {
		m, err := machine.NewMachine(kernel.NewUUID(), "SN-31", "PAX", "S920", branch.ID)
		require.NoError(t, err)
		machines := new(MockMachineRepository)
		machines.On("Get", ctx, m.ID()).Return(m, nil).Once()

		cmd, err := commands.NewTransitionMachineCommand(testActor(kernel.RoleBranchManager, branch.ID), m.ID(), machine.ReceivedAtCenter, "")
		require.NoError(t, err)

		_, err = commands.NewTransitionMachineCommandHandler(newMachineUoW(ctx, machines, new(MockAuditLog)), branches).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrPreconditionFailed)
		assert.Equal(t, machine.New, m.Status())
		machines.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("maintenance center", func(t *testing.T) {
		m, err := machine.NewMachine(kernel.NewUUID(), "SN-32", "PAX", "S920", center.ID)
		require.NoError(t, err)
		machines := new(MockMachineRepository)
		audit := new(MockAuditLog)
		machines.On("Get", ctx, m.ID()).Return(m, nil).Once()
		machines.On("Update", ctx, m, machine.New).Return(nil).Once()
		machines.On("AppendLog", ctx, mock.AnythingOfType("machine.StatusLog")).Return(nil).Once()
		audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once()

		cmd, err := commands.NewTransitionMachineCommand(testActor(kernel.RoleCenterManager, center.ID), m.ID(), machine.ReceivedAtCenter, "walk-in")
		require.NoError(t, err)

		moved, err := commands.NewTransitionMachineCommandHandler(newMachineUoW(ctx, machines, audit), branches).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, machine.ReceivedAtCenter, moved.Status())
		machines.AssertExpectations(t)
	})
}

func TestTransitionMachineCommandHandler_Handle_LostCompareAndSwap(t *testing.T) {
	ctx := t.Context()
	branch := kernel.NewUUID()
	m, err := machine.NewMachine(kernel.NewUUID(), "SN-9", "PAX", "S920", branch)
	require.NoError(t, err)

	machines := new(MockMachineRepository)
	machines.On("Get", ctx, m.ID()).Return(m, nil).Once()
	machines.On("Update", ctx, m, machine.New).Return(errs.NewConflictError("machine", "status changed concurrently")).Once()

	cmd, err := commands.NewTransitionMachineCommand(testActor(kernel.RoleBranchManager, branch), m.ID(), machine.Standby, "")
	require.NoError(t, err)

	_, err = commands.NewTransitionMachineCommandHandler(newMachineUoW(ctx, machines, new(MockAuditLog)), new(MockBranchDirectory)).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	machines.AssertNotCalled(t, "AppendLog", mock.Anything, mock.Anything)
}

func TestRemindPendingApprovalsCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	subject, err := approval.BatchSubject([]string{"SN-1"})
	require.NoError(t, err)
	stale, err := approval.NewRequest(kernel.NewUUID(), subject, kernel.NewUUID(), kernel.NewUUID(), kernel.ZeroMoney(),
		nil, "", kernel.NewUUID(), time.Now().Add(-72*time.Hour))
	require.NoError(t, err)
	raced, err := approval.NewRequest(kernel.NewUUID(), subject, kernel.NewUUID(), kernel.NewUUID(), kernel.ZeroMoney(),
		nil, "", kernel.NewUUID(), time.Now().Add(-72*time.Hour))
	require.NoError(t, err)

	approvals := new(MockApprovalRepository)
	approvals.On("ListStalePending", ctx, mock.AnythingOfType("time.Time"), 50).Return([]*approval.Request{stale, raced}, nil).Once()
	approvals.On("Update", ctx, stale, approval.StatusPending).Return(nil).Once()
	approvals.On("Update", ctx, raced, approval.StatusPending).Return(errs.NewConflictError("approval request", "answered")).Once()

	uow := new(MockUoW)
	uow.On("ApprovalRepository").Return(approvals)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory[commands.ApprovalUoW])
	factory.On("Create").Return(uow).Once()

	notifier := new(MockNotifier)
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Once()

	cmd, err := commands.NewRemindPendingApprovalsCommand(24*time.Hour, 50)
	require.NoError(t, err)

	count, err := commands.NewRemindPendingApprovalsCommandHandler(factory, notifier).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotNil(t, stale.LastRemindedAt())
	assert.True(t, stale.IsPending())
	notifier.AssertExpectations(t)
}
