package commands

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var ErrRegisterPushSubscriptionCommandIsNotConstructed = errors.New(
	"RegisterPushSubscriptionCommand must be created via NewRegisterPushSubscriptionCommand constructor",
)

// RegisterPushSubscriptionCommand stores a browser push endpoint for the actor
// and their branch.
type RegisterPushSubscriptionCommand struct {
	actor    kernel.Actor
	endpoint string
	p256dh   string
	auth     string

	guard guard.ConstructorGuard
}

// NewRegisterPushSubscriptionCommand requires the endpoint and both keys.
func NewRegisterPushSubscriptionCommand(actor kernel.Actor, endpoint, p256dh, auth string) (RegisterPushSubscriptionCommand, error) {
	var endpointErr, keysErr error
	if u, err := url.Parse(strings.TrimSpace(endpoint)); err != nil || u.Scheme != "https" || u.Host == "" {
		endpointErr = errs.NewValueIsInvalidErrorWithCause("endpoint", err)
	}
	if strings.TrimSpace(p256dh) == "" || strings.TrimSpace(auth) == "" {
		keysErr = errs.NewValueIsRequiredError("keys")
	}
	if err := errors.Join(validateActor(actor), endpointErr, keysErr); err != nil {
		return RegisterPushSubscriptionCommand{}, err
	}
	return RegisterPushSubscriptionCommand{
		actor:    actor,
		endpoint: strings.TrimSpace(endpoint),
		p256dh:   p256dh,
		auth:     auth,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterPushSubscriptionCommand) Validate() error {
	return c.guard.Validate(ErrRegisterPushSubscriptionCommandIsNotConstructed)
}

// RegisterPushSubscriptionCommandHandler saves subscriptions.
type RegisterPushSubscriptionCommandHandler struct {
	store ports.SubscriptionStore
}

// NewRegisterPushSubscriptionCommandHandler creates the handler.
func NewRegisterPushSubscriptionCommandHandler(store ports.SubscriptionStore) RegisterPushSubscriptionCommandHandler {
	return RegisterPushSubscriptionCommandHandler{store: store}
}

// Handle upserts the subscription by endpoint, so a browser that registers
// again replaces its keys.
func (h RegisterPushSubscriptionCommandHandler) Handle(ctx context.Context, cmd RegisterPushSubscriptionCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.store.Save(ctx, ports.PushSubscription{
		UserID:   cmd.actor.ID(),
		BranchID: cmd.actor.BranchID(),
		Endpoint: cmd.endpoint,
		P256dh:   cmd.p256dh,
		Auth:     cmd.auth,
	})
}
