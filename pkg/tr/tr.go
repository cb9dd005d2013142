package tr

import (
	"context"

	"github.com/DRSN-tech/shop-orders/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jimlawless/whereami"
)

type txKey struct{}

// Executor: общий набор методов pgx.Tx и *pgxpool.Pool, которым пользуются репозитории.
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}

// WithTx кладёт транзакцию в контекст.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// ExecutorFromCtx возвращает транзакцию из контекста, если она есть, иначе пул.
func ExecutorFromCtx(ctx context.Context, db Executor) Executor {
	if tx, err := TxFromCtx(ctx); err == nil {
		return tx
	}
	return db
}

// Manager открывает транзакцию вокруг функции и кладёт её в контекст.
// Вложенные вызовы Do присоединяются к внешней транзакции.
type Manager struct {
	db   transaction.Transactional
	opts pgx.TxOptions
}

func NewManager(db transaction.Transactional, opts pgx.TxOptions) *Manager {
	return &Manager{db: db, opts: opts}
}

// Do выполняет fn в транзакции. Ошибка fn (или паника) приводит к Rollback, иначе Commit.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, txErr := TxFromCtx(ctx); txErr == nil {
		return fn(ctx)
	}

	txCtx, tx, err := transaction.NewTransaction(ctx, m.opts, m.db)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		_ = tx.Rollback(txCtx)
		return e.Wrap(whereami.WhereAmI(), e.ErrTransactionNotFound)
	}
	txCtx = WithTx(txCtx, pgxTx)

	defer func() {
		if p := recover(); p != nil {
			if tx.IsActive() {
				_ = tx.Rollback(txCtx)
			}
			panic(p)
		}

		if err != nil && tx.IsActive() {
			_ = tx.Rollback(txCtx)
		}
	}()

	if err = fn(txCtx); err != nil {
		return err
	}

	if err = tx.Commit(txCtx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
