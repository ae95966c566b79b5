package cmd

import (
	"context"

	httpadapter "maintenance/internal/adapters/in/http"
	"maintenance/internal/adapters/out/notify"
	"maintenance/internal/adapters/out/postgres"
	"maintenance/internal/adapters/out/postgres/directoryrepo"
	"maintenance/internal/adapters/out/postgres/notificationrepo"
	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/jobs"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs    Config
	logger     *zap.Logger
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	branches    *directoryrepo.CachedBranchDirectory
	catalog     *directoryrepo.GormPartCatalog
	coordinator services.RepairCoordinator
	dispatcher  *notify.Dispatcher
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *zap.Logger) CompositionRoot {
	var push *webpush.Options
	if configs.PushEnabled() {
		push = &webpush.Options{
			Subscriber:      configs.VAPIDSubscriber,
			VAPIDPublicKey:  configs.VAPIDPublicKey,
			VAPIDPrivateKey: configs.VAPIDPrivateKey,
			TTL:             configs.PushTTL,
		}
	}

	return CompositionRoot{
		configs:     configs,
		logger:      logger,
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		branches:    directoryrepo.NewCachedBranchDirectory(gormDB, configs.BranchCacheTTL),
		catalog:     directoryrepo.NewGormPartCatalog(gormDB),
		coordinator: services.NewRepairCoordinator(),
		dispatcher: notify.NewDispatcher(
			notify.Config{Workers: configs.NotifyWorkers, QueueSize: configs.NotifyQueueSize, Push: push},
			notificationrepo.NewGormNotificationStore(gormDB),
			notificationrepo.NewGormSubscriptionStore(gormDB),
			notify.WebPushSender{},
			logger.Named("notify"),
		),
	}
}

// StartNotifications runs the delivery workers until ctx is cancelled.
func (c *CompositionRoot) StartNotifications(ctx context.Context) {
	c.dispatcher.Start(ctx)
}

// WaitNotifications blocks until the delivery workers have stopped.
func (c *CompositionRoot) WaitNotifications() {
	c.dispatcher.Wait()
}

func (c *CompositionRoot) transferUoWFactory() commands.TransferUoWFactory {
	return FuncTransferUoWFactory(func() commands.TransferUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) assignmentUoWFactory() commands.AssignmentUoWFactory {
	return FuncAssignmentUoWFactory(func() commands.AssignmentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) approvalUoWFactory() commands.ApprovalUoWFactory {
	return FuncApprovalUoWFactory(func() commands.ApprovalUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateTransferOrderCommandHandler() commands.CreateTransferOrderCommandHandler {
	return commands.NewCreateTransferOrderCommandHandler(c.transferUoWFactory(), c.branches, c.catalog, c.dispatcher)
}

func (c *CompositionRoot) CreateReceiveTransferOrderCommandHandler() commands.ReceiveTransferOrderCommandHandler {
	return commands.NewReceiveTransferOrderCommandHandler(c.transferUoWFactory(), c.branches, c.dispatcher)
}

func (c *CompositionRoot) CreateRejectTransferOrderCommandHandler() commands.RejectTransferOrderCommandHandler {
	return commands.NewRejectTransferOrderCommandHandler(c.transferUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateCancelTransferOrderCommandHandler() commands.CancelTransferOrderCommandHandler {
	return commands.NewCancelTransferOrderCommandHandler(c.transferUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateTransitionMachineCommandHandler() commands.TransitionMachineCommandHandler {
	var f commands.MachineUoWFactory = FuncMachineUoWFactory(func() commands.MachineUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransitionMachineCommandHandler(f, c.branches)
}

func (c *CompositionRoot) CreateAssignTechnicianCommandHandler() commands.AssignTechnicianCommandHandler {
	return commands.NewAssignTechnicianCommandHandler(c.assignmentUoWFactory(), c.branches, c.coordinator, c.dispatcher)
}

func (c *CompositionRoot) CreateStartAssignmentCommandHandler() commands.StartAssignmentCommandHandler {
	return commands.NewStartAssignmentCommandHandler(c.assignmentUoWFactory(), c.coordinator)
}

func (c *CompositionRoot) CreateUpdateAssignmentPartsCommandHandler() commands.UpdateAssignmentPartsCommandHandler {
	return commands.NewUpdateAssignmentPartsCommandHandler(c.assignmentUoWFactory(), c.catalog, c.coordinator)
}

func (c *CompositionRoot) CreateRequestApprovalCommandHandler() commands.RequestApprovalCommandHandler {
	return commands.NewRequestApprovalCommandHandler(c.assignmentUoWFactory(), c.coordinator, c.dispatcher)
}

func (c *CompositionRoot) CreateCompleteAssignmentCommandHandler() commands.CompleteAssignmentCommandHandler {
	return commands.NewCompleteAssignmentCommandHandler(c.assignmentUoWFactory(), c.coordinator, c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateCreateBatchApprovalCommandHandler() commands.CreateBatchApprovalCommandHandler {
	return commands.NewCreateBatchApprovalCommandHandler(c.approvalUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateRespondApprovalCommandHandler() commands.RespondApprovalCommandHandler {
	return commands.NewRespondApprovalCommandHandler(c.approvalUoWFactory(), c.coordinator, c.dispatcher)
}

func (c *CompositionRoot) CreateRemindPendingApprovalsCommandHandler() commands.RemindPendingApprovalsCommandHandler {
	return commands.NewRemindPendingApprovalsCommandHandler(c.approvalUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreatePayDebtCommandHandler() commands.PayDebtCommandHandler {
	var f commands.LedgerUoWFactory = FuncLedgerUoWFactory(func() commands.LedgerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPayDebtCommandHandler(f, c.dispatcher)
}

func (c *CompositionRoot) CreateRegisterPushSubscriptionCommandHandler() commands.RegisterPushSubscriptionCommandHandler {
	return commands.NewRegisterPushSubscriptionCommandHandler(notificationrepo.NewGormSubscriptionStore(c.gormDB))
}

func (c *CompositionRoot) CreateListPendingTransferOrdersQueryHandler() queries.ListPendingTransferOrdersQueryHandler {
	return queries.NewListPendingTransferOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPendingSerialsQueryHandler() queries.GetPendingSerialsQueryHandler {
	return queries.NewGetPendingSerialsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetKanbanQueryHandler() queries.GetKanbanQueryHandler {
	return queries.NewGetKanbanQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetMyAssignmentsQueryHandler() queries.GetMyAssignmentsQueryHandler {
	return queries.NewGetMyAssignmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListApprovalsQueryHandler() queries.ListApprovalsQueryHandler {
	return queries.NewListApprovalsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListPendingPaymentsQueryHandler() queries.ListPendingPaymentsQueryHandler {
	return queries.NewListPendingPaymentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPaymentSummaryQueryHandler() queries.GetPaymentSummaryQueryHandler {
	return queries.NewGetPaymentSummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListEntitiesQueryHandler() queries.ListEntitiesQueryHandler {
	return queries.NewListEntitiesQueryHandler(c.gormDB)
}

// CreateHTTPServer wires every use case into the HTTP adapter.
func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(httpadapter.Handlers{
		CreateTransferOrder:   c.CreateCreateTransferOrderCommandHandler(),
		ReceiveTransferOrder:  c.CreateReceiveTransferOrderCommandHandler(),
		RejectTransferOrder:   c.CreateRejectTransferOrderCommandHandler(),
		CancelTransferOrder:   c.CreateCancelTransferOrderCommandHandler(),
		TransitionMachine:     c.CreateTransitionMachineCommandHandler(),
		AssignTechnician:      c.CreateAssignTechnicianCommandHandler(),
		StartAssignment:       c.CreateStartAssignmentCommandHandler(),
		UpdateParts:           c.CreateUpdateAssignmentPartsCommandHandler(),
		RequestApproval:       c.CreateRequestApprovalCommandHandler(),
		CompleteAssignment:    c.CreateCompleteAssignmentCommandHandler(),
		CreateBatchApproval:   c.CreateCreateBatchApprovalCommandHandler(),
		RespondApproval:       c.CreateRespondApprovalCommandHandler(),
		PayDebt:               c.CreatePayDebtCommandHandler(),
		RegisterPush:          c.CreateRegisterPushSubscriptionCommandHandler(),
		PendingTransferOrders: c.CreateListPendingTransferOrdersQueryHandler(),
		PendingSerials:        c.CreateGetPendingSerialsQueryHandler(),
		Kanban:                c.CreateGetKanbanQueryHandler(),
		MyAssignments:         c.CreateGetMyAssignmentsQueryHandler(),
		Approvals:             c.CreateListApprovalsQueryHandler(),
		PendingPayments:       c.CreateListPendingPaymentsQueryHandler(),
		PaymentSummary:        c.CreateGetPaymentSummaryQueryHandler(),
		Entities:              c.CreateListEntitiesQueryHandler(),
	}, c.branches)
}

// CreateRouterConfig returns the HTTP settings derived from the config.
func (c *CompositionRoot) CreateRouterConfig() (httpadapter.RouterConfig, error) {
	overrides, err := c.configs.Overrides()
	if err != nil {
		return httpadapter.RouterConfig{}, err
	}
	return httpadapter.RouterConfig{
		Verifier:  httpadapter.NewTokenVerifier(c.configs.JWTSecret, c.configs.JWTIssuer),
		Policy:    services.NewAccessPolicy(services.DefaultGrants(), overrides),
		Logger:    c.logger.Named("http"),
		RateLimit: c.configs.RateLimit,
		RateBurst: c.configs.RateBurst,
		BodyLimit: c.configs.BodyLimit,
	}, nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	reminder := jobs.NewApprovalReminderJob(
		c.CreateRemindPendingApprovalsCommandHandler(),
		jobs.ApprovalReminderConfig{
			Schedule:  c.configs.ReminderSchedule,
			OlderThan: c.configs.ReminderAfter,
			BatchSize: c.configs.ReminderBatch,
			Timeout:   c.configs.ReminderTimeout,
		},
		c.logger.Named("jobs"),
	)
	return jobs.NewJobManager(c.logger.Named("jobs"), reminder)
}

type FuncMachineUoWFactory func() commands.MachineUoW

func (f FuncMachineUoWFactory) Create() commands.MachineUoW {
	return f()
}

type FuncTransferUoWFactory func() commands.TransferUoW

func (f FuncTransferUoWFactory) Create() commands.TransferUoW {
	return f()
}

type FuncAssignmentUoWFactory func() commands.AssignmentUoW

func (f FuncAssignmentUoWFactory) Create() commands.AssignmentUoW {
	return f()
}

type FuncApprovalUoWFactory func() commands.ApprovalUoW

func (f FuncApprovalUoWFactory) Create() commands.ApprovalUoW {
	return f()
}

type FuncLedgerUoWFactory func() commands.LedgerUoW

func (f FuncLedgerUoWFactory) Create() commands.LedgerUoW {
	return f()
}
