package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/ports"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryInbox struct {
	mu    sync.Mutex
	saved []ports.Notification
	err   error
}

func (m *memoryInbox) Save(_ context.Context, n ports.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, n)
	return m.err
}

func (m *memoryInbox) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type memorySubscriptions struct {
	mu       sync.Mutex
	byUser   map[kernel.UUID][]ports.PushSubscription
	byBranch map[kernel.UUID][]ports.PushSubscription
	deleted  []string
}

func (m *memorySubscriptions) Save(context.Context, ports.PushSubscription) error { return nil }

func (m *memorySubscriptions) ForUser(_ context.Context, id kernel.UUID) ([]ports.PushSubscription, error) {
	return m.byUser[id], nil
}

func (m *memorySubscriptions) ForBranch(_ context.Context, id kernel.UUID) ([]ports.PushSubscription, error) {
	return m.byBranch[id], nil
}

func (m *memorySubscriptions) Delete(_ context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, endpoint)
	return nil
}

func (m *memorySubscriptions) deletedEndpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

type mockSender struct {
	mu       sync.Mutex
	sent     map[string][]byte
	statuses map[string]int
	err      error
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.sent == nil {
		m.sent = map[string][]byte{}
	}
	m.sent[sub.Endpoint] = payload
	status, ok := m.statuses[sub.Endpoint]
	if !ok {
		status = http.StatusCreated
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(nil))}, nil
}

func (m *mockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockSender) payload(endpoint string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[endpoint]
}

func subscription(endpoint string, user kernel.UUID) ports.PushSubscription {
	return ports.PushSubscription{UserID: user, Endpoint: endpoint, P256dh: "key", Auth: "auth"}
}

func startDispatcher(t *testing.T, cfg Config, inbox Inbox, subs ports.SubscriptionStore, sender Sender) *Dispatcher {
	t.Helper()
	d := NewDispatcher(cfg, inbox, subs, sender, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	t.Cleanup(func() {
		cancel()
		d.Wait()
	})
	return d
}

func TestDispatcher_DeliversToInboxAndEndpoints(t *testing.T) {
	user := kernel.NewUUID()
	branch := kernel.NewUUID()
	subs := &memorySubscriptions{
		byUser:   map[kernel.UUID][]ports.PushSubscription{user: {subscription("https://push/a", user)}},
		byBranch: map[kernel.UUID][]ports.PushSubscription{branch: {subscription("https://push/a", user), subscription("https://push/b", kernel.NewUUID())}},
	}
	inbox := &memoryInbox{}
	sender := &mockSender{}
	d := startDispatcher(t, Config{Workers: 2, Push: &webpush.Options{}}, inbox, subs, sender)

	d.Notify(context.Background(), ports.Notification{
		UserID: &user, BranchID: &branch, Type: "DEBT_OPENED", Title: "New debt", Message: "POS-1 repaired", Link: "/pending-payments",
	})

	require.Eventually(t, func() bool { return sender.count() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, inbox.count())

	var p pushPayload
	require.NoError(t, json.Unmarshal(sender.payload("https://push/b"), &p))
	assert.Equal(t, "DEBT_OPENED", p.Type)
	assert.Equal(t, "New debt", p.Title)
	assert.Equal(t, "/pending-payments", p.Link)
}

func TestDispatcher_DeletesExpiredSubscriptions(t *testing.T) {
	user := kernel.NewUUID()
	subs := &memorySubscriptions{
		byUser: map[kernel.UUID][]ports.PushSubscription{user: {
			subscription("https://push/gone", user),
			subscription("https://push/missing", user),
			subscription("https://push/ok", user),
		}},
	}
	sender := &mockSender{statuses: map[string]int{
		"https://push/gone":    http.StatusGone,
		"https://push/missing": http.StatusNotFound,
	}}
	d := startDispatcher(t, Config{Push: &webpush.Options{}}, &memoryInbox{}, subs, sender)

	d.Notify(context.Background(), ports.Notification{UserID: &user, Type: "SERVICE_ASSIGNED", Title: "t"})

	require.Eventually(t, func() bool { return len(subs.deletedEndpoints()) == 2 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"https://push/gone", "https://push/missing"}, subs.deletedEndpoints())
}

func TestDispatcher_WithoutPushOnlyWritesInbox(t *testing.T) {
	user := kernel.NewUUID()
	subs := &memorySubscriptions{
		byUser: map[kernel.UUID][]ports.PushSubscription{user: {subscription("https://push/a", user)}},
	}
	inbox := &memoryInbox{}
	sender := &mockSender{}
	d := startDispatcher(t, Config{}, inbox, subs, sender)

	d.Notify(context.Background(), ports.Notification{UserID: &user, Type: "DEBT_PAID", Title: "t"})

	require.Eventually(t, func() bool { return inbox.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Zero(t, sender.count())
}

func TestDispatcher_FailuresDoNotStopDelivery(t *testing.T) {
	user := kernel.NewUUID()
	subs := &memorySubscriptions{
		byUser: map[kernel.UUID][]ports.PushSubscription{user: {subscription("https://push/a", user)}},
	}
	inbox := &memoryInbox{err: errors.New("db down")}
	sender := &mockSender{err: errors.New("network")}
	d := startDispatcher(t, Config{Push: &webpush.Options{}}, inbox, subs, sender)

	d.Notify(context.Background(), ports.Notification{UserID: &user, Type: "A", Title: "t"})
	d.Notify(context.Background(), ports.Notification{UserID: &user, Type: "B", Title: "t"})

	require.Eventually(t, func() bool { return inbox.count() == 2 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, subs.deletedEndpoints())
}

func TestDispatcher_NotifyNeverBlocks(t *testing.T) {
	// Not started: nothing drains the queue.
	d := NewDispatcher(Config{QueueSize: 1}, &memoryInbox{}, &memorySubscriptions{}, &mockSender{}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			d.Notify(context.Background(), ports.Notification{Type: "X"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}
	assert.Len(t, d.queue, 1)
}
