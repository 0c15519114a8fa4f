package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/metrics"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	outboxChannel       = "outbox_pending"
	batchSize           = 10
	notifyWait          = 30 * time.Second
	reconnectBase       = 2 * time.Second
	reconnectMax        = 30 * time.Second
	defaultPollInterval = 15 * time.Second
	staleAfter          = 5 * time.Minute
)

// OutboxWorker публикует события из outbox в Kafka. Обработка запускается по
// уведомлению PostgreSQL (LISTEN outbox_pending) и периодически по таймеру,
// чтобы забрать события, возвращённые в очередь после ошибок.
type OutboxWorker struct {
	repo         usecase.OutboxRepository
	logger       logger.Logger
	producer     usecase.MessageProducer
	dsn          string
	pollInterval time.Duration

	wake chan struct{}
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewOutboxWorker создаёт воркер. Пустой dsn отключает LISTEN, остаётся только опрос.
func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dsn string,
	pollInterval time.Duration,
) *OutboxWorker {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &OutboxWorker{
		repo:         repo,
		logger:       logger,
		producer:     producer,
		dsn:          dsn,
		pollInterval: pollInterval,
		wake:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.dsn != "" {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.listen(ctx)
		}()
	}
}

// Stop останавливает воркер и дожидается завершения горутин. Повторный вызов безопасен.
func (w *OutboxWorker) Stop() {
	w.once.Do(func() {
		close(w.stop)
	})
	w.wg.Wait()
}

func (w *OutboxWorker) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return
		case <-ticker.C:
			w.requeueStale(ctx)
			w.drain(ctx)
		case <-w.wake:
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) requeueStale(ctx context.Context) {
	n, err := w.repo.RequeueStale(ctx, staleAfter)
	if err != nil {
		w.logger.Warnf("Requeue of stale outbox events failed: %v", err)
		return
	}
	if n > 0 {
		w.logger.Infof("Returned %d stale outbox events to pending", n)
	}
}

// drain обрабатывает пачки, пока в outbox есть ожидающие события.
func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		published, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Outbox batch failed: %v", err)
			return
		}
		if published == 0 {
			return
		}
	}
}

// processBatch возвращает число опубликованных событий. Неопубликованные возвращаются в очередь.
func (w *OutboxWorker) processBatch(ctx context.Context) (int, error) {
	const op = "OutboxWorker.processBatch"

	events, err := w.repo.GetAndMarkAsProcessing(ctx, batchSize)
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	published := 0
	for _, event := range events {
		err := w.producer.WriteRawMessage(ctx, &usecase.WriteRawMessageReq{
			ProductID: event.ProductID,
			Payload:   event.Payload,
		})
		if err != nil {
			metrics.OutboxFailuresTotal.Inc()
			w.logger.Warnf("Publish of outbox event %s failed, returning to pending: %v", event.EventID, e.Wrap(op, err))
			if err := w.repo.MarkAsPending(context.WithoutCancel(ctx), event.ID); err != nil {
				w.logger.Warnf("Mark pending failed: %v", e.Wrap(op, err))
			}
			continue
		}

		metrics.OutboxPublishedTotal.Inc()
		published++
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("Mark processed failed: %v", e.Wrap(op, err))
		}
	}

	return published, nil
}

// listen подписывается на канал outbox_pending и будит обработчик при уведомлении.
// При потере соединения переподключается с экспоненциальной задержкой.
func (w *OutboxWorker) listen(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		err := w.listenOnce(ctx)
		if err == nil {
			return
		}

		w.logger.Warnf("Outbox listener: %v. Reconnecting...", err)
		if !jitter.Sleep(w.done(ctx), jitter.ExponentialBackoff(reconnectBase, reconnectMax, attempt, jitter.DefaultJitter)) {
			return
		}
	}
}

// listenOnce возвращает nil только при остановке воркера.
func (w *OutboxWorker) listenOnce(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, w.dsn)
	if err != nil {
		return e.Wrap("failed to connect for LISTEN", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+outboxChannel); err != nil {
		return e.Wrap("failed to LISTEN", err)
	}
	w.logger.Infof("Subscribed to '%s' channel", outboxChannel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		default:
		}

		waitCtx, cancel := context.WithTimeout(ctx, notifyWait)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			return e.Wrap("connection lost", err)
		}

		if notif != nil && notif.Channel == outboxChannel {
			w.logger.Debugf("Received outbox notification")
			w.notify()
		}
	}
}

func (w *OutboxWorker) done(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-w.stop:
		}
		close(done)
	}()
	return done
}
