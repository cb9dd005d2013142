package tr

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct{ name string }

func (f *fakeExecutor) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeExecutor) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f *fakeExecutor) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestTxFromCtx_NoTransaction(t *testing.T) {
	_, err := TxFromCtx(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrTransactionNotFound))
}

func TestExecutorFromCtx_FallsBackToPool(t *testing.T) {
	pool := &fakeExecutor{name: "pool"}
	got := ExecutorFromCtx(context.Background(), pool)
	assert.Same(t, pool, got)
}

type fakeTx struct {
	pgx.Tx
}

func TestExecutorFromCtx_PrefersTransaction(t *testing.T) {
	tx := &fakeTx{}
	got := ExecutorFromCtx(WithTx(context.Background(), tx), &fakeExecutor{})
	assert.Same(t, tx, got)
}

func TestManager_DoJoinsOuterTransaction(t *testing.T) {
	tx := &fakeTx{}
	ctx := WithTx(context.Background(), tx)

	// db == nil: новая транзакция не открывается, fn работает во внешней.
	m := NewManager(nil, pgx.TxOptions{})

	var inner pgx.Tx
	err := m.Do(ctx, func(ctx context.Context) error {
		var err error
		inner, err = TxFromCtx(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Same(t, tx, inner)

	boom := errors.New("boom")
	err = m.Do(ctx, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
