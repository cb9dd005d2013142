package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestClose_LIFO(t *testing.T) {
	var order []string
	c := NewCloser(0)
	c.AddSimple("db", func() { order = append(order, "db") })
	c.Add("redis", func(context.Context) error {
		order = append(order, "redis")
		return nil
	})
	c.AddSimple("http", func() { order = append(order, "http") })

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "db"}, order)
}

func TestClose_CollectsErrorsWithNames(t *testing.T) {
	c := NewCloser(0)
	c.Add("kafka", func(context.Context) error { return errors.New("broker gone") })
	c.AddSimple("db", func() {})

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[!] kafka: broker gone")
}

func TestClose_OnlyOnce(t *testing.T) {
	calls := 0
	c := NewCloser(0)
	c.AddSimple("x", func() { calls++ })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestClose_ForcesRemainingOnTimeout(t *testing.T) {
	var (
		mu     sync.Mutex
		forced []string
	)
	release := make(chan struct{})
	c := NewCloser(100 * time.Millisecond)

	c.Add("db", func(ctx context.Context) error {
		mu.Lock()
		forced = append(forced, "db")
		mu.Unlock()
		return nil
	})
	c.Add("slow", func(ctx context.Context) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	close(release)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted after 0/2 steps")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"db"}, forced)
}
