package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPollSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Poll(context.Background(), Fixed(time.Millisecond, 5), func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestPollExhausts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Poll(context.Background(), Fixed(time.Millisecond, 4), func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 4, calls)
}

func TestPollAbortsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	err := Poll(context.Background(), Fixed(time.Millisecond, 5), func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestPollHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Poll(ctx, Fixed(time.Minute, 2), func(ctx context.Context) (bool, error) {
		return false, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScheduleDelay(t *testing.T) {
	t.Parallel()

	s := Exponential(10)
	require.Equal(t, time.Second, s.Delay(1))
	require.Equal(t, 2*time.Second, s.Delay(2))
	require.Equal(t, 4*time.Second, s.Delay(3))
	require.Equal(t, 30*time.Second, s.Delay(10)) // capped

	f := Fixed(50*time.Millisecond, 3)
	require.Equal(t, 50*time.Millisecond, f.Delay(1))
	require.Equal(t, 50*time.Millisecond, f.Delay(3))
}
