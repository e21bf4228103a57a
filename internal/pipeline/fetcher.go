package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ppiankov/indicacoes/internal/metrics"
	"github.com/ppiankov/indicacoes/internal/model"
	"github.com/ppiankov/indicacoes/internal/util"
	"github.com/ppiankov/indicacoes/internal/worker"
)

// Fetcher retrieves listing pages from the portal. It never retries.
type Fetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	metrics    *metrics.Metrics
}

// NewFetcher creates a Fetcher. limiter and m may be nil.
func NewFetcher(cfg model.HTTPConfig, limiter *worker.Limiter, m *metrics.Metrics) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Transport: util.NewTransport(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		limiter:   limiter,
		metrics:   m,
	}
}

// FetchPage returns the body of rawURL as text.
// Errors are *TimeoutError, *PortalError or *FetchError.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()
	body, err := f.fetch(ctx, rawURL)
	f.metrics.ObserveFetch(outcome(err), time.Since(start))
	return body, err
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", f.classify(ctx, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &PortalError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", f.classify(ctx, rawURL, fmt.Errorf("read body: %w", err))
	}

	return string(body), nil
}

// classify separates our own deadline from caller cancellation and transport errors
func (f *Fetcher) classify(parent context.Context, rawURL string, err error) error {
	if parent.Err() == nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return &TimeoutError{URL: rawURL, Timeout: f.timeout}
		}
	}
	return &FetchError{URL: rawURL, Err: err}
}

func outcome(err error) string {
	var (
		timeoutErr *TimeoutError
		portalErr  *PortalError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &timeoutErr):
		return metrics.OutcomeTimeout
	case errors.As(err, &portalErr):
		return metrics.OutcomePortalError
	default:
		return metrics.OutcomeFetchError
	}
}
