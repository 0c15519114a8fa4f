package tr

import (
	"context"

	"github.com/DRSN-tech/storefront/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// Manager выполняет функции внутри транзакции PostgreSQL.
type Manager struct {
	db transaction.Transactional
}

func NewManager(db transaction.Transactional) *Manager {
	return &Manager{db: db}
}

// Do открывает транзакцию, кладёт её в контекст и коммитит после успешного выполнения fn.
// При ошибке fn или панике транзакция откатывается.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "Manager.Do"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, m.db)
	if err != nil {
		return e.Wrap(op, err)
	}

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		_ = tx.Rollback(ctx)
		return e.Wrap(op, e.ErrTransactionNotFound)
	}

	defer func() {
		if p := recover(); p != nil {
			if tx.IsActive() {
				_ = tx.Rollback(ctx)
			}
			panic(p)
		}

		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(WithTx(ctx, pgxTx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
