package http

import (
	"context"
	"time"

	"maintenance/internal/core/domain/services"
	"maintenance/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	Verifier *TokenVerifier
	Policy   services.AccessPolicy
	Logger   *zap.Logger

	// RateLimit is the sustained requests per second allowed per caller;
	// zero disables limiting.
	RateLimit float64
	RateBurst int

	BodyLimit string
}

// NewRouter builds the echo instance serving s.
func NewRouter(ctx context.Context, cfg RouterConfig, s *Server) (*echo.Echo, error) {
	doc, err := LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	if err := RegisterSwagger(doc); err != nil {
		return nil, err
	}
	openapiValidator, err := validateRequests(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.ERROR)
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)
	e.Validator = newRequestValidator()

	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "1M"
	}
	e.Use(middleware.RequestID())
	e.Use(requestLogger(cfg.Logger))
	e.Use(middleware.Recover())
	e.Use(instrument)
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1", Authenticate(cfg.Verifier))
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = int(cfg.RateLimit) + 1
		}
		v1.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store:               NewLimiterStore(rate.Limit(cfg.RateLimit), burst, 10*time.Minute),
			IdentifierExtractor: rateIdentifier,
		}))
	}
	v1.Use(openapiValidator)

	allow := func(r services.Resource) echo.MiddlewareFunc {
		return Require(cfg.Policy, r)
	}

	transfers := v1.Group("/transfer-orders")
	transfers.POST("", s.CreateTransferOrder, allow(services.ResourceTransferCreate))
	transfers.GET("/pending", s.ListPendingTransferOrders, allow(services.ResourceTransferRead))
	transfers.GET("/pending-serials", s.ListPendingSerials, allow(services.ResourceTransferRead))
	transfers.POST("/:id/receive", s.ReceiveTransferOrder, allow(services.ResourceTransferReceive))
	transfers.POST("/:id/reject", s.RejectTransferOrder, allow(services.ResourceTransferReject))
	transfers.POST("/:id/cancel", s.CancelTransferOrder, allow(services.ResourceTransferCancel))

	workflow := v1.Group("/machine-workflow")
	workflow.POST("/:id/transition", s.TransitionMachine, allow(services.ResourceWorkflowTransit))
	workflow.GET("/kanban", s.GetKanban, allow(services.ResourceWorkflowRead))

	assignments := v1.Group("/service-assignments")
	assignments.POST("", s.AssignTechnician, allow(services.ResourceAssignmentCreate))
	assignments.GET("/mine", s.ListMyAssignments, allow(services.ResourceAssignmentRead))
	assignments.PUT("/:id/start", s.StartAssignment, allow(services.ResourceAssignmentWork))
	assignments.PUT("/:id/update-parts", s.UpdateAssignmentParts, allow(services.ResourceAssignmentWork))
	assignments.POST("/:id/request-approval", s.RequestApproval, allow(services.ResourceAssignmentWork))
	assignments.PUT("/:id/complete", s.CompleteAssignment, allow(services.ResourceAssignmentWork))

	approvals := v1.Group("/maintenance-approvals")
	approvals.GET("", s.ListApprovals, allow(services.ResourceApprovalRead))
	approvals.POST("", s.CreateBatchApproval, allow(services.ResourceApprovalCreate))
	approvals.PUT("/:id/approve", s.ApproveRequest, allow(services.ResourceApprovalRespond))
	approvals.PUT("/:id/reject", s.RejectRequest, allow(services.ResourceApprovalRespond))

	payments := v1.Group("/pending-payments")
	payments.GET("", s.ListPendingPayments, allow(services.ResourcePaymentRead))
	payments.GET("/summary", s.GetPaymentSummary, allow(services.ResourcePaymentRead))
	payments.PUT("/:id/pay", s.PayDebt, allow(services.ResourcePaymentPay))

	v1.POST("/push-subscriptions", s.RegisterPushSubscription, allow(services.ResourcePushSubscriptions))
	v1.GET("/admin/entities/:kind", s.ListEntities, allow(services.ResourceAdminRead))

	return e, nil
}
