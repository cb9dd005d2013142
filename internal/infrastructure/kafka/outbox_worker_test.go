package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/cfg"
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memOutbox: in-memory outbox с теми же переходами статусов, что и в PostgreSQL.
type memOutbox struct {
	mu     sync.Mutex
	events []*usecase.OutboxEvent
}

func (m *memOutbox) add(id int64, eventType usecase.OutboxEventType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, &usecase.OutboxEvent{
		ID:          id,
		EventID:     "evt",
		EventType:   eventType,
		AggregateID: id * 10,
		Payload:     []byte{byte(id)},
		Status:      usecase.Pending,
	})
}

func (m *memOutbox) Create(context.Context, *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	return nil, errors.New("not used")
}

func (m *memOutbox) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]*usecase.OutboxEvent, 0, limit)
	for _, ev := range m.events {
		if len(res) == limit {
			break
		}
		if ev.Status == usecase.Pending {
			ev.Status = usecase.Processing
			cp := *ev
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (m *memOutbox) setStatus(id int64, from, to usecase.OutboxStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == id && ev.Status == from {
			ev.Status = to
		}
	}
}

func (m *memOutbox) MarkAsProcessed(_ context.Context, id int64) error {
	m.setStatus(id, usecase.Processing, usecase.Processed)
	return nil
}

func (m *memOutbox) Release(_ context.Context, id int64) error {
	m.setStatus(id, usecase.Processing, usecase.Pending)
	return nil
}

func (m *memOutbox) statuses() map[int64]usecase.OutboxStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make(map[int64]usecase.OutboxStatus, len(m.events))
	for _, ev := range m.events {
		res[ev.ID] = ev.Status
	}
	return res
}

type fakeProducer struct {
	mu       sync.Mutex
	sent     []*usecase.WriteRawMessageReq
	failKeys map[string]error
}

func (f *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failKeys[req.Key]; ok {
		return err
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeProducer) sentKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.sent))
	for _, req := range f.sent {
		keys = append(keys, req.Key)
	}
	return keys
}

func newWorker(repo usecase.OutboxRepository, producer usecase.MessageProducer) *OutboxWorker {
	return NewOutboxWorker(repo, logger.NewNopLogger(), producer, &cfg.OutboxCfg{
		BatchSize:    2,
		PollInterval: 10 * time.Millisecond,
		RetryDelay:   time.Millisecond,
	}, "", "outbox_pending")
}

func TestOutboxWorker_DrainsAllPendingEvents(t *testing.T) {
	repo := &memOutbox{}
	for id := int64(1); id <= 5; id++ {
		repo.add(id, usecase.OrderCreated)
	}
	producer := &fakeProducer{}

	w := newWorker(repo, producer)
	w.drain(context.Background())

	assert.Equal(t, []string{"10", "20", "30", "40", "50"}, producer.sentKeys())
	for id, status := range repo.statuses() {
		assert.Equal(t, usecase.Processed, status, "event %d", id)
	}
	assert.Equal(t, usecase.OrderCreated, producer.sent[0].Type)
}

func TestOutboxWorker_ReleasesFailedEvents(t *testing.T) {
	repo := &memOutbox{}
	repo.add(1, usecase.OrderCreated)
	repo.add(2, usecase.OrderStatusChanged)
	producer := &fakeProducer{failKeys: map[string]error{"10": errors.New("message too large")}}

	w := newWorker(repo, producer)
	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)

	statuses := repo.statuses()
	assert.Equal(t, usecase.Pending, statuses[1])
	assert.Equal(t, usecase.Processed, statuses[2])
}

func TestOutboxWorker_RetriesTemporaryFailures(t *testing.T) {
	repo := &memOutbox{}
	repo.add(1, usecase.OrderCreated)
	producer := &fakeProducer{failKeys: map[string]error{"10": errors.New("dial tcp: connection refused")}}

	w := newWorker(repo, producer)
	err := w.processEvent(context.Background(), &usecase.OutboxEvent{AggregateID: 1})
	require.NoError(t, err)

	err = w.processEvent(context.Background(), &usecase.OutboxEvent{AggregateID: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Temporary Kafka failure")
}

func TestOutboxWorker_StartNotifyStop(t *testing.T) {
	repo := &memOutbox{}
	producer := &fakeProducer{}

	w := newWorker(repo, producer)
	w.Start(context.Background())

	repo.add(1, usecase.OrderCreated)
	w.Notify()

	assert.Eventually(t, func() bool {
		return repo.statuses()[1] == usecase.Processed
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	w.Stop()
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("read tcp: i/o timeout")))
	assert.True(t, isRetryableError(context.DeadlineExceeded))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}

func TestNewMessage(t *testing.T) {
	msg := newMessage(usecase.NewWriteRawMessageReq("42", usecase.OrderStatusChanged, []byte("payload")))

	assert.Equal(t, []byte("42"), msg.Key)
	assert.Equal(t, []byte("payload"), msg.Value)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventTypeHeader, msg.Headers[0].Key)
	assert.Equal(t, "order.status_changed", string(msg.Headers[0].Value))
}
