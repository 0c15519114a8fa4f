package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(0)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) Func {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	c.Add("db", record("db"))
	c.Add("redis", record("redis"))
	c.AddSimple("http", func() { _ = record("http")(context.Background()) })

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "db"}, order)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("kafka", func(context.Context) error { return errors.New("broker gone") })
	c.Add("redis", func(context.Context) error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka: broker gone")
}

func TestCloser_CloseIsIdempotent(t *testing.T) {
	c := NewCloser(0)
	calls := 0
	c.Add("once", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloser_ForcesRemainingOnTimeout(t *testing.T) {
	c := NewCloser(100 * time.Millisecond)

	forced := make(chan struct{}, 1)
	c.Add("first", func(context.Context) error {
		forced <- struct{}{}
		return nil
	})
	c.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")

	select {
	case <-forced:
	case <-time.After(time.Second):
		t.Fatal("remaining resource was not closed")
	}
}
