package kafka

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/cfg"
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/jitter"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	sendAttempts     = 3
	maxRetryDelay    = 10 * time.Second
	listenTimeout    = 30 * time.Second
	reconnectBackoff = 2 * time.Second
)

// OutboxWorker переносит события из outbox в Kafka.
// Просыпается по NOTIFY от PostgreSQL и, на случай потерянного уведомления, по таймеру.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	cfg       *cfg.OutboxCfg
	dbConnStr string
	channel   string

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewOutboxWorker создаёт воркер. Пустой dbConnStr отключает LISTEN: остаётся только опрос по таймеру.
func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	cfg *cfg.OutboxCfg,
	dbConnStr string,
	channel string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		cfg:       cfg,
		dbConnStr: dbConnStr,
		channel:   channel,
		wake:      make(chan struct{}, 1),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.dbConnStr != "" {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.listenOutboxNotifications(ctx)
		}()
	}
}

// Stop останавливает воркер и дожидается завершения текущей пачки.
func (w *OutboxWorker) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
	})
	w.wg.Wait()
}

// Notify будит воркер вне расписания. Не блокируется.
func (w *OutboxWorker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		case <-w.wake:
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока они приходят полными и без ошибок.
func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("outbox batch failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch отправляет одну пачку. Неотправленные события возвращаются в PENDING
// и будут повторены на следующем проходе; в этом случае hasMore = false, чтобы не крутиться впустую.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	failed := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed++
			w.logger.Warnf("outbox event %s (%s) not sent: %v", event.EventID, event.EventType, err)

			// ctx может быть уже отменён, возврат в очередь не должен от этого зависеть
			if err := w.repo.Release(context.WithoutCancel(ctx), event.ID); err != nil {
				w.logger.Errorf(err, "release outbox event %d failed", event.ID)
			}
			continue
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return failed == 0 && len(events) == w.cfg.BatchSize, nil
}

// processEvent отправляет событие, повторяя временные ошибки Kafka с экспоненциальной задержкой.
func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	req := usecase.NewWriteRawMessageReq(strconv.FormatInt(event.AggregateID, 10), event.EventType, event.Payload)

	var err error
	for attempt := 0; attempt < sendAttempts; attempt++ {
		if err = w.producer.WriteRawMessage(ctx, req); err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return e.Wrap("Permanent Kafka failure", err)
		}

		if attempt == sendAttempts-1 {
			break
		}

		if !jitter.Sleep(ctx, jitter.ExponentialBackoff(w.cfg.RetryDelay, maxRetryDelay, attempt, jitter.DefaultJitter)) {
			return ctx.Err()
		}
	}

	return e.Wrap("Temporary Kafka failure, will retry", err)
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn
	reconnect := jitter.Backoff{Base: reconnectBackoff, Max: maxRetryDelay, Factor: jitter.DefaultJitter}

	connect := func() error {
		var err error
		conn, err = pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err = conn.Exec(ctx, "LISTEN "+w.channel); err != nil {
			conn.Close(context.Background())
			conn = nil
			return e.Wrap("failed to LISTEN", err)
		}

		w.logger.Infof("Subscribed to '%s' channel", w.channel)
		return nil
	}

	defer func() {
		if conn != nil {
			conn.Close(context.Background())
		}
	}()

	for attempt := 0; ctx.Err() == nil; {
		if conn == nil {
			if err := connect(); err != nil {
				w.logger.Warnf("LISTEN connect failed: %v", err)
				if !jitter.Sleep(ctx, reconnect.Delay(attempt)) {
					return
				}
				attempt++
				continue
			}
			attempt = 0
		}

		waitCtx, cancel := context.WithTimeout(ctx, listenTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			conn.Close(context.Background())
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == w.channel {
			w.logger.Debugf("Received outbox notification")
			w.Notify()
		}
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
