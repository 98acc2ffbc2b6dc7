package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Unlimited(t *testing.T) {
	l := New(0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow())
	}
}

func TestNew_Limited(t *testing.T) {
	l := New(1)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestBackoff_BlocksAllow(t *testing.T) {
	l := New(0)
	l.Backoff(time.Hour)
	assert.False(t, l.Allow())
}

func TestBackoffFromHeader(t *testing.T) {
	l := New(0)
	l.BackoffFromHeader("not-a-number")
	assert.False(t, l.Allow())

	l2 := New(0)
	l2.BackoffFromHeader("0")
	assert.False(t, l2.Allow(), "zero falls back to the default backoff")
}

func TestWait_RespectsContext(t *testing.T) {
	l := New(0)
	l.Backoff(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWait_ProceedsWithoutBackoff(t *testing.T) {
	l := New(0)
	assert.NoError(t, l.Wait(context.Background()))
}
