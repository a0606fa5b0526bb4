package httpx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(nil, "upstream", time.Minute, 3)
	boom := errors.New("connection refused")

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return boom })
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.False(t, IsOpen(err))
	}

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, IsOpen(err))
	assert.Contains(t, err.Error(), "breaker (upstream)")
	assert.Equal(t, "open", cb.State())
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(nil, "upstream", time.Minute, 2)
	boom := errors.New("timeout")

	_ = cb.Execute(func() error { return boom })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return boom })

	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, "closed", cb.State())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(nil, "upstream", 20*time.Millisecond, 1)

	_ = cb.Execute(func() error { return errors.New("down") })
	assert.True(t, IsOpen(cb.Execute(func() error { return nil })))

	time.Sleep(40 * time.Millisecond)
	assert.NoError(t, cb.Execute(func() error { return nil }))
}
