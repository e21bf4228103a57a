package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// ErrDisallowed is returned when robots.txt forbids the listing path
var ErrDisallowed = errors.New("listing path disallowed by robots.txt")

// TimeoutError means a page request exceeded its deadline
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %s did not respond within %s", e.URL, e.Timeout)
}

// PortalError means the portal answered with a non-2xx status
type PortalError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *PortalError) Error() string {
	return fmt.Sprintf("portal returned %s for %s", e.Status, e.URL)
}

// FetchError covers transport failures other than timeouts
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AggregationError fails a whole run. Page is the listing page that broke it.
type AggregationError struct {
	Page int
	Err  error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed on page %d: %v", e.Page, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
