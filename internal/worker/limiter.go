package worker

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per portal host. A nil *Limiter never waits.
type Limiter struct {
	hosts sync.Map // host -> *rate.Limiter
	rps   rate.Limit
	burst int
}

// NewLimiter returns nil when requestsPerSecond <= 0 (limiting disabled).
// burst <= 0 falls back to 5.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{rps: rate.Limit(requestsPerSecond), burst: burst}
}

// Wait blocks until rawURL's host has a token or ctx ends
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	if l == nil {
		return nil
	}
	bucket, err := l.bucketFor(rawURL)
	if err != nil {
		return err
	}
	return bucket.Wait(ctx)
}

// SetCrawlDelay slows host to one request per delay, as announced by robots.txt.
// Delays that would be faster than the configured rate are ignored.
func (l *Limiter) SetCrawlDelay(host string, delay time.Duration) {
	if l == nil || delay <= 0 {
		return
	}
	limit := rate.Every(delay)
	if limit >= l.rps {
		return
	}

	bucket, loaded := l.hosts.LoadOrStore(host, rate.NewLimiter(limit, 1))
	if loaded {
		b := bucket.(*rate.Limiter)
		b.SetLimit(limit)
		b.SetBurst(1)
	}
}

func (l *Limiter) bucketFor(rawURL string) (*rate.Limiter, error) {
	host, err := extractHost(rawURL)
	if err != nil {
		return nil, err
	}
	if b, ok := l.hosts.Load(host); ok {
		return b.(*rate.Limiter), nil
	}
	b, _ := l.hosts.LoadOrStore(host, rate.NewLimiter(l.rps, l.burst))
	return b.(*rate.Limiter), nil
}

func extractHost(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return u.Host, nil
}
