package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fastPolicy(max int) Policy {
	return Policy{MaxRetries: max, BaseDelay: time.Millisecond}
}

func TestDo_CallsAtMostMaxRetriesPlusOne(t *testing.T) {
	for _, max := range []int{0, 1, 3} {
		calls := 0
		err := Do(context.Background(), fastPolicy(max), func(ctx context.Context) error {
			calls++
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, max+1, calls, "max retries %d", max)
	}
}

func TestDo_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableErrorStopsImmediately(t *testing.T) {
	errFatal := errors.New("fatal")
	p := fastPolicy(5)
	p.ShouldRetry = func(err error) bool { return !errors.Is(err, errFatal) }

	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return errFatal
	})
	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{MaxRetries: 5, BaseDelay: time.Hour}, func(ctx context.Context) error {
		calls++
		cancel()
		return errBoom
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValue(t *testing.T) {
	calls := 0
	v, err := DoValue(context.Background(), fastPolicy(2), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errBoom
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestDelays_Double(t *testing.T) {
	got := Delays(Policy{MaxRetries: 4, BaseDelay: 500 * time.Millisecond})
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
	}, got)

	assert.Empty(t, Delays(Policy{MaxRetries: 0, BaseDelay: time.Second}))
	assert.Len(t, Delays(DefaultPolicy()), DefaultMaxRetries)
}
