package ratelimit_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/app/ratelimit"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter := ratelimit.NewMemoryLimiter(newLogger(), ratelimit.Policy{
		Window:      time.Second,
		MaxRequests: 3,
	}, &ratelimit.Options{TimeProvider: c.Now})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := limiter.Admit(ctx, "1.2.3.4", "/api/contact")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "call %d", i)
		assert.Equal(t, i, d.Count)
	}

	d, err := limiter.Admit(ctx, "1.2.3.4", "/api/contact")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	c.Advance(time.Second + time.Millisecond)

	d, err = limiter.Admit(ctx, "1.2.3.4", "/api/contact")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestMemoryLimiter_KeysPerRoute(t *testing.T) {
	c := &clock{now: time.Now()}
	limiter := ratelimit.NewMemoryLimiter(newLogger(), ratelimit.Policy{
		Window:      time.Minute,
		MaxRequests: 1,
	}, &ratelimit.Options{TimeProvider: c.Now})
	ctx := context.Background()

	d, _ := limiter.Admit(ctx, "1.2.3.4", "/a")
	assert.True(t, d.Allowed)
	d, _ = limiter.Admit(ctx, "1.2.3.4", "/a")
	assert.False(t, d.Allowed)

	d, _ = limiter.Admit(ctx, "1.2.3.4", "/b")
	assert.True(t, d.Allowed)
	d, _ = limiter.Admit(ctx, "5.6.7.8", "/a")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	c := &clock{now: time.Now()}
	limiter := ratelimit.NewMemoryLimiter(newLogger(), ratelimit.Policy{
		Window:      time.Minute,
		MaxRequests: 10,
	}, &ratelimit.Options{TimeProvider: c.Now})
	ctx := context.Background()

	_, _ = limiter.Admit(ctx, "a", "/")
	c.Advance(30 * time.Second)
	_, _ = limiter.Admit(ctx, "b", "/")
	require.Equal(t, 2, limiter.Len())

	c.Advance(31 * time.Second)
	assert.Equal(t, 1, limiter.Sweep())
	assert.Equal(t, 1, limiter.Len())
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(newLogger(), ratelimit.Policy{
		Window:      time.Hour,
		MaxRequests: 50,
	}, nil)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Admit(ctx, "1.2.3.4", "/")
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestPolicy_Details(t *testing.T) {
	p := ratelimit.Policy{Window: 15 * time.Minute, MaxRequests: 100}
	assert.Equal(t, "Exceeded 100 requests in 900000ms", p.Details())
}
