// Package notify delivers workflow notifications to the in-app inbox and to
// registered web push endpoints. Delivery runs on a small worker pool so the
// calling command never waits for it.
package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/metrics"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

const (
	channelInbox = "inbox"
	channelPush  = "push"
)

// Sender sends a single web push message.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender sends through webpush.SendNotification.
type WebPushSender struct{}

func (WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Inbox persists a notification for in-app display.
type Inbox interface {
	Save(ctx context.Context, n ports.Notification) error
}

// Config sizes the worker pool and its queue.
type Config struct {
	Workers   int
	QueueSize int
	// Push is nil when no VAPID keys are configured; push delivery is then
	// skipped and only the inbox is written.
	Push *webpush.Options
}

// Dispatcher implements ports.Notifier.
type Dispatcher struct {
	cfg    Config
	queue  chan ports.Notification
	inbox  Inbox
	subs   ports.SubscriptionStore
	sender Sender
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewDispatcher applies defaults to cfg and falls back to WebPushSender. Call
// Start before the first Notify is expected to be delivered.
func NewDispatcher(cfg Config, inbox Inbox, subs ports.SubscriptionStore, sender Sender, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if sender == nil {
		sender = WebPushSender{}
	}
	return &Dispatcher{
		cfg:    cfg,
		queue:  make(chan ports.Notification, cfg.QueueSize),
		inbox:  inbox,
		subs:   subs,
		sender: sender,
		logger: logger,
	}
}

// Notify enqueues n. When the queue is full the notification is dropped.
func (d *Dispatcher) Notify(_ context.Context, n ports.Notification) {
	select {
	case d.queue <- n:
	default:
		metrics.RecordNotification(channelInbox, metrics.OutcomeDropped)
		d.logger.Warn("notification queue full, dropping", zap.String("type", n.Type))
	}
}

// Start launches the workers. They stop when ctx is cancelled; Wait blocks
// until they have returned.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	log := d.logger.With(zap.Int("worker", id))
	log.Debug("notification worker started")
	for {
		select {
		case n := <-d.queue:
			// Delivery outlives the request that produced it, so it only
			// honours the dispatcher's own context.
			d.deliver(ctx, n)
		case <-ctx.Done():
			log.Debug("notification worker stopped")
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n ports.Notification) {
	if err := d.inbox.Save(ctx, n); err != nil {
		metrics.RecordNotification(channelInbox, metrics.OutcomeFailed)
		d.logger.Error("failed to store notification", zap.String("type", n.Type), zap.Error(err))
	} else {
		metrics.RecordNotification(channelInbox, metrics.OutcomeSent)
	}

	if d.cfg.Push == nil {
		return
	}

	subs, err := d.recipients(ctx, n)
	if err != nil {
		d.logger.Error("failed to load push subscriptions", zap.String("type", n.Type), zap.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{Type: n.Type, Title: n.Title, Body: n.Message, Link: n.Link})
	if err != nil {
		d.logger.Error("failed to encode push payload", zap.Error(err))
		return
	}
	for _, sub := range subs {
		d.push(ctx, sub, payload)
	}
}

type pushPayload struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link,omitempty"`
}

// recipients collects the endpoints of the addressed user and branch, each
// endpoint once.
func (d *Dispatcher) recipients(ctx context.Context, n ports.Notification) ([]ports.PushSubscription, error) {
	var all []ports.PushSubscription
	if n.UserID != nil {
		subs, err := d.subs.ForUser(ctx, *n.UserID)
		if err != nil {
			return nil, err
		}
		all = append(all, subs...)
	}
	if n.BranchID != nil {
		subs, err := d.subs.ForBranch(ctx, *n.BranchID)
		if err != nil {
			return nil, err
		}
		all = append(all, subs...)
	}

	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, s := range all {
		if _, ok := seen[s.Endpoint]; ok {
			continue
		}
		seen[s.Endpoint] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func (d *Dispatcher) push(ctx context.Context, sub ports.PushSubscription, payload []byte) {
	resp, err := d.sender.Send(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, d.cfg.Push)
	if err != nil {
		metrics.RecordNotification(channelPush, metrics.OutcomeFailed)
		d.logger.Warn("web push failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		metrics.RecordNotification(channelPush, metrics.OutcomeExpired)
		d.logger.Info("push subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := d.subs.Delete(ctx, sub.Endpoint); err != nil {
			d.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	case resp.StatusCode >= http.StatusBadRequest:
		metrics.RecordNotification(channelPush, metrics.OutcomeFailed)
		d.logger.Warn("push service refused message",
			zap.String("endpoint", sub.Endpoint), zap.Int("status", resp.StatusCode))
	default:
		metrics.RecordNotification(channelPush, metrics.OutcomeSent)
	}
}
