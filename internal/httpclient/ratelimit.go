package httpclient

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter keeps one token bucket per request host, so file parts sent
// to an upload host do not spend the API host's budget. Safe for concurrent use.
type HostLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewHostLimiter creates a limiter allowing ratePerSecond sustained requests
// and bursts of burst requests to each host.
func NewHostLimiter(ratePerSecond float64, burst int) *HostLimiter {
	return &HostLimiter{
		limit:    rate.Limit(ratePerSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	return h.forHost(host).Wait(ctx)
}

// Hosts returns the number of hosts seen so far.
func (h *HostLimiter) Hosts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.limiters)
}

func (h *HostLimiter) forHost(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[host] = l
	}
	return l
}
