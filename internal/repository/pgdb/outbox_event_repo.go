package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxEventRepo хранит события изменения товаров до их публикации в Kafka.
type OutboxEventRepo struct {
	pool *pgxpool.Pool
	conv converter.OutboxEventConverter
}

func NewOutboxEventRepo(pool *pgxpool.Pool, conv converter.OutboxEventConverter) *OutboxEventRepo {
	return &OutboxEventRepo{
		pool: pool,
		conv: conv,
	}
}

// OutboxChannel — канал LISTEN/NOTIFY, в который сообщается о новых событиях.
const OutboxChannel = "outbox_pending"

// Create записывает событие. Вызывается только внутри транзакции, изменяющей товар.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := o.conv.ToModel(event)
	query := `
		INSERT INTO outbox_events (event_id, event_type, product_id, payload, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;
	`

	if err := tx.QueryRow(ctx, query,
		model.EventID,
		model.EventType,
		model.ProductID,
		model.Payload,
		model.Status,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.EventID)
		}

		return nil, fmt.Errorf("%s: failed to insert event: %w", whereami.WhereAmI(), err)
	}

	// Уведомление доставляется слушателям только после коммита
	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, '')", OutboxChannel); err != nil {
		return nil, fmt.Errorf("%s: failed to notify: %w", whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing забирает до limit ожидающих событий, пропуская строки,
// заблокированные другими воркерами.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) (events []*usecase.OutboxEvent, err error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", whereami.WhereAmI(), err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id, event_type, product_id, payload, status, created_at, processed_at
	`

	rows, err := tx.Query(ctx, query, usecase.OutboxProcessing, usecase.OutboxPending, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query pending events: %w", whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*converter.OutboxEventModel, error) {
		var model converter.OutboxEventModel
		err := row.Scan(
			&model.ID,
			&model.EventID,
			&model.EventType,
			&model.ProductID,
			&model.Payload,
			&model.Status,
			&model.CreatedAt,
			&model.ProcessedAt,
		)
		return &model, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to scan events: %w", whereami.WhereAmI(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", whereami.WhereAmI(), err)
	}

	return o.conv.ToArrEntity(models), nil
}

func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3
	`

	// Ноль затронутых строк означает, что событие уже обработано другим воркером
	if _, err := o.pool.Exec(ctx, query, usecase.OutboxProcessed, id, usecase.OutboxProcessing); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as processed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

// MarkAsPending возвращает событие в очередь после неудачной публикации.
func (o *OutboxEventRepo) MarkAsPending(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, usecase.OutboxPending, id, usecase.OutboxProcessing); err != nil {
		return fmt.Errorf("%s: failed to return event %d to pending: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

// RequeueStale возвращает в очередь события, зависшие в processing дольше olderThan
// (воркер остановился, не успев их опубликовать).
func (o *OutboxEventRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE status = $2 AND processing_started_at < NOW() - make_interval(secs => $3)
	`

	tag, err := o.pool.Exec(ctx, query, usecase.OutboxPending, usecase.OutboxProcessing, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("%s: failed to requeue stale events: %w", whereami.WhereAmI(), err)
	}

	return tag.RowsAffected(), nil
}
