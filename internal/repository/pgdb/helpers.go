package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront/pkg/tr"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// executor — общее подмножество pgxpool.Pool и pgx.Tx.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// executorFrom возвращает транзакцию из контекста, если она есть, иначе пул.
func executorFrom(ctx context.Context, pool *pgxpool.Pool) executor {
	if tx, err := tr.TxFromCtx(ctx); err == nil {
		return tx
	}
	return pool
}

func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
