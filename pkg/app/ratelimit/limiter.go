package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Policy is a fixed window: at most MaxRequests per Window for one key.
type Policy struct {
	Window      time.Duration
	MaxRequests int
}

func (p Policy) Details() string {
	return fmt.Sprintf("Exceeded %d requests in %dms", p.MaxRequests, p.Window.Milliseconds())
}

type Decision struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

// Limiter counts requests per client and route.
type Limiter interface {
	Admit(ctx context.Context, client, route string) (Decision, error)
	Policy() Policy
}

type Options struct {
	TimeProvider func() time.Time
}

func timeProvider(opts *Options) func() time.Time {
	if opts != nil && opts.TimeProvider != nil {
		return opts.TimeProvider
	}
	return time.Now
}
