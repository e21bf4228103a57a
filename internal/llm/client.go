package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/indicacoes/internal/util"
)

// maxResponseBytes caps provider responses; annotations are a few hundred bytes
const maxResponseBytes = 1 << 20

// APIError is a non-2xx answer from a provider endpoint
type APIError struct {
	Provider   string
	StatusCode int
	Kind       string // provider error type, if reported
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s API error (%d): %s - %s", e.Provider, e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// errorDecoder extracts the kind and message from a provider error body
type errorDecoder func(body []byte) (kind, message string)

// jsonClient posts JSON to one provider base URL
type jsonClient struct {
	provider  string
	baseURL   string
	headers   http.Header
	hc        *http.Client
	decodeErr errorDecoder
}

func newJSONClient(provider string, cfg Config, defaultBaseURL string, defaultTimeout time.Duration, decodeErr errorDecoder) *jsonClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &jsonClient{
		provider: provider,
		baseURL:  strings.TrimSuffix(pick(cfg.BaseURL, defaultBaseURL), "/"),
		headers:  http.Header{"Content-Type": {"application/json"}},
		hc: &http.Client{
			Timeout:   timeout,
			Transport: util.NewTransport(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		decodeErr: decodeErr,
	}
}

// post sends in as JSON to path and decodes a 2xx body into out
func (c *jsonClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", c.provider, err)
	}
	return c.do(req, out)
}

// get issues a GET to path, discarding the body
func (c *jsonClient) get(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", c.provider, err)
	}
	return c.do(req, nil)
}

func (c *jsonClient) do(req *http.Request, out any) error {
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", c.provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Provider: c.provider, StatusCode: resp.StatusCode}
		if c.decodeErr != nil {
			apiErr.Kind, apiErr.Message = c.decodeErr(body)
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.provider, err)
	}
	return nil
}
