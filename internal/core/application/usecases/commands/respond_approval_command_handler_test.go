package commands_test

import (
	"testing"
	"time"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type repairUnderReview struct {
	center, origin kernel.UUID
	machine        *machine.Machine
	assignment     *assignment.Assignment
	request        *approval.Request
}

func newRepairUnderReview(t *testing.T) repairUnderReview {
	t.Helper()
	center, origin := kernel.NewUUID(), kernel.NewUUID()
	machineID, assignmentID, requestID, technicianID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	at := time.Now()

	m, err := machine.RestoreMachine(machineID, "SN-1", "Ingenico", "Move5000", machine.PendingApproval,
		center, &origin, &assignmentID, &technicianID)
	require.NoError(t, err)

	a, err := assignment.RestoreAssignment(assignmentID, machineID, "SN-1", technicianID, center, origin,
		assignment.StatusPendingApproval, nil, kernel.ZeroMoney(), assignment.ApprovalPending, kernel.ZeroMoney(),
		&requestID, "", nil, at, &at, nil, 1)
	require.NoError(t, err)

	subject, err := approval.AssignmentSubject(assignmentID, machineID)
	require.NoError(t, err)
	req, err := approval.NewRequest(requestID, subject, center, origin, kernel.MustMoney("500"), nil, "", technicianID, at)
	require.NoError(t, err)

	return repairUnderReview{center: center, origin: origin, machine: m, assignment: a, request: req}
}

func TestRespondApprovalCommandHandler_Handle_ApproveAssignment(t *testing.T) {
	ctx := t.Context()
	r := newRepairUnderReview(t)

	approvals := new(MockApprovalRepository)
	assignments := new(MockAssignmentRepository)
	machines := new(MockMachineRepository)
	audit := new(MockAuditLog)
	notifier := new(MockNotifier)
	uow := new(MockUoW)
	uow.On("ApprovalRepository").Return(approvals)
	uow.On("AssignmentRepository").Return(assignments)
	uow.On("MachineRepository").Return(machines)
	uow.On("AuditLog").Return(audit)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		approvals.On("Get", ctx, r.request.ID()).Return(r.request, nil).Once(),
		approvals.On("Update", ctx, r.request, approval.StatusPending).Return(nil).Once(),
		assignments.On("Get", ctx, r.assignment.ID()).Return(r.assignment, nil).Once(),
		machines.On("Get", ctx, r.machine.ID()).Return(r.machine, nil).Once(),
		machines.On("Update", ctx, r.machine, machine.PendingApproval).Return(nil).Once(),
		machines.On("AppendLog", ctx, mock.MatchedBy(func(l machine.StatusLog) bool {
			return l.From == machine.PendingApproval && l.To == machine.RepairApproved
		})).Return(nil).Once(),
		assignments.On("Update", ctx, r.assignment, assignment.StatusPendingApproval).Return(nil).Once(),
		audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Type == commands.NotifyApprovalAnswered && n.BranchID.IsEqual(r.center)
	})).Once()

	factory := new(MockUoWFactory[commands.ApprovalUoW])
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewRespondApprovalCommand(testActor(kernel.RoleBranchManager, r.origin), r.request.ID(), approval.Approve, "")
	require.NoError(t, err)

	handler := commands.NewRespondApprovalCommandHandler(factory, services.NewRepairCoordinator(), notifier)
	req, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, req.Status())
	assert.Equal(t, assignment.StatusApproved, r.assignment.Status())
	assert.Equal(t, assignment.ApprovalApproved, r.assignment.ApprovalStatus())
	assert.True(t, r.assignment.ApprovedCost().Equal(kernel.MustMoney("500")))
	assert.Equal(t, machine.RepairApproved, r.machine.Status())
	approvals.AssertExpectations(t)
	assignments.AssertExpectations(t)
	machines.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRespondApprovalCommandHandler_Handle_SecondAnswerConflicts(t *testing.T) {
	ctx := t.Context()
	r := newRepairUnderReview(t)
	require.NoError(t, r.request.Respond(approval.Approve, kernel.NewUUID(), "", time.Now()))

	approvals := new(MockApprovalRepository)
	uow := new(MockUoW)
	uow.On("ApprovalRepository").Return(approvals)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	approvals.On("Get", ctx, r.request.ID()).Return(r.request, nil).Once()

	factory := new(MockUoWFactory[commands.ApprovalUoW])
	factory.On("Create").Return(uow).Once()
	notifier := new(MockNotifier)

	cmd, err := commands.NewRespondApprovalCommand(testActor(kernel.RoleBranchManager, r.origin), r.request.ID(), approval.Reject, "too expensive")
	require.NoError(t, err)

	handler := commands.NewRespondApprovalCommandHandler(factory, services.NewRepairCoordinator(), notifier)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, approval.StatusApproved, r.request.Status())
	approvals.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestRespondApprovalCommandHandler_Handle_CenterCannotAnswer(t *testing.T) {
	ctx := t.Context()
	r := newRepairUnderReview(t)

	approvals := new(MockApprovalRepository)
	uow := new(MockUoW)
	uow.On("ApprovalRepository").Return(approvals)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	approvals.On("Get", ctx, r.request.ID()).Return(r.request, nil).Once()

	factory := new(MockUoWFactory[commands.ApprovalUoW])
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewRespondApprovalCommand(testActor(kernel.RoleCenterManager, r.center), r.request.ID(), approval.Approve, "")
	require.NoError(t, err)

	handler := commands.NewRespondApprovalCommandHandler(factory, services.NewRepairCoordinator(), new(MockNotifier))
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrForbidden)
	assert.True(t, r.request.IsPending())
}

func TestRespondApprovalCommandHandler_Handle_RejectBatch(t *testing.T) {
	ctx := t.Context()
	center, origin := kernel.NewUUID(), kernel.NewUUID()
	serials := []string{"SN-2", "SN-1"}

	machines := new(MockMachineRepository)
	batch := make([]*machine.Machine, 0, len(serials))
	for _, serial := range []string{"SN-1", "SN-2"} {
		m, err := machine.RestoreMachine(kernel.NewUUID(), serial, "PAX", "A920", machine.AwaitingApproval, center, &origin, nil, nil)
		require.NoError(t, err)
		batch = append(batch, m)
		machines.On("GetBySerial", ctx, serial).Return(m, nil).Once()
		machines.On("Update", ctx, m, machine.AwaitingApproval).Return(nil).Once()
	}
	machines.On("AppendLog", ctx, mock.AnythingOfType("machine.StatusLog")).Return(nil).Times(2)

	subject, err := approval.BatchSubject(serials)
	require.NoError(t, err)
	req, err := approval.NewRequest(kernel.NewUUID(), subject, center, origin, kernel.ZeroMoney(), nil, "", kernel.NewUUID(), time.Now())
	require.NoError(t, err)

	approvals := new(MockApprovalRepository)
	approvals.On("Get", ctx, req.ID()).Return(req, nil).Once()
	approvals.On("Update", ctx, req, approval.StatusPending).Return(nil).Once()
	audit := new(MockAuditLog)
	audit.On("LogAction", ctx, mock.AnythingOfType("ports.AuditEntry")).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("ApprovalRepository").Return(approvals)
	uow.On("MachineRepository").Return(machines)
	uow.On("AuditLog").Return(audit)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory[commands.ApprovalUoW])
	factory.On("Create").Return(uow).Once()
	notifier := new(MockNotifier)
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Once()

	cmd, err := commands.NewRespondApprovalCommand(globalActor(), req.ID(), approval.Reject, "not worth repairing")
	require.NoError(t, err)

	handler := commands.NewRespondApprovalCommandHandler(factory, services.NewRepairCoordinator(), notifier)
	_, err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	for _, m := range batch {
		assert.Equal(t, machine.RepairRejected, m.Status())
	}
	uow.AssertNotCalled(t, "AssignmentRepository")
	uow.AssertNotCalled(t, "DebtRepository")
	machines.AssertExpectations(t)
}

func TestNewRespondApprovalCommand_RejectNeedsReason(t *testing.T) {
	_, err := commands.NewRespondApprovalCommand(globalActor(), kernel.NewUUID(), approval.Reject, " ")
	require.ErrorIs(t, err, approval.ErrReasonIsRequired)

	_, err = commands.NewRespondApprovalCommand(globalActor(), kernel.NewUUID(), approval.Decision("MAYBE"), "")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
