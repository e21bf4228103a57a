package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// RobotsTTL is how long a host's robots.txt is trusted before refetching
const RobotsTTL = time.Hour

// Verdict is the robots.txt answer for one URL
type Verdict struct {
	Allowed    bool
	CrawlDelay time.Duration
}

var allowAll = Verdict{Allowed: true}

// RobotsChecker fetches robots.txt once per host and TTL. Concurrent lookups
// for the same host share one request.
type RobotsChecker struct {
	rules     *cache.Cache
	inflight  singleflight.Group
	client    *http.Client
	userAgent string
}

// NewRobotsChecker creates a checker. client may be nil.
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		rules:     cache.New(RobotsTTL, 2*RobotsTTL),
		client:    client,
		userAgent: NormalizeUserAgent(userAgent),
	}
}

// Check returns the verdict for rawURL. An unreachable robots.txt allows everything
// and is not cached.
func (r *RobotsChecker) Check(ctx context.Context, rawURL string) (Verdict, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return Verdict{}, fmt.Errorf("parse URL: %w", err)
	}
	if !target.IsAbs() || target.Host == "" {
		return Verdict{}, fmt.Errorf("robots: %q is not an absolute URL", rawURL)
	}

	data, err := r.load(ctx, target)
	if err != nil {
		return allowAll, nil
	}

	group := data.FindGroup(r.userAgent)
	if group == nil {
		return allowAll, nil
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return Verdict{Allowed: group.Test(path), CrawlDelay: group.CrawlDelay}, nil
}

func (r *RobotsChecker) load(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	key := target.Scheme + "://" + target.Host
	if cached, ok := r.rules.Get(key); ok {
		return cached.(*robotstxt.RobotsData), nil
	}

	v, err, _ := r.inflight.Do(key, func() (any, error) {
		data, err := r.fetch(ctx, key+"/robots.txt")
		if err != nil {
			return nil, err
		}
		r.rules.SetDefault(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*robotstxt.RobotsData), nil
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", robotsURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", robotsURL, err)
	}
	return data, nil
}

// Clear forgets every cached robots.txt
func (r *RobotsChecker) Clear() {
	r.rules.Flush()
}

// NormalizeUserAgent reduces a browser user agent to the product token
// robots.txt groups are matched on ("Mozilla/5.0 (...)" -> "Mozilla")
func NormalizeUserAgent(ua string) string {
	product, _, _ := strings.Cut(strings.TrimSpace(ua), " ")
	name, _, _ := strings.Cut(product, "/")
	return name
}
