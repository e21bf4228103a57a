package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestJSONClient_PlainErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	c := newJSONClient("test", Config{BaseURL: server.URL}, "", time.Second, decodeOllamaError)
	err := c.post(context.Background(), "/x", map[string]string{"a": "b"}, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Errorf("Expected raw body as message, got %q", apiErr.Message)
	}
	if apiErr.Error() != "test API error (502): upstream unavailable" {
		t.Errorf("Unexpected error text %q", apiErr.Error())
	}
}

func TestJSONClient_HeadersAndDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Extra") != "1" {
			t.Error("Expected extra header")
		}
		_, _ = w.Write([]byte(`{"value": 42}`))
	}))
	defer server.Close()

	c := newJSONClient("test", Config{BaseURL: server.URL + "/"}, "", time.Second, nil)
	c.headers.Set("X-Extra", "1")

	var out struct {
		Value int `json:"value"`
	}
	if err := c.post(context.Background(), "/x", struct{}{}, &out); err != nil {
		t.Fatalf("post: %v", err)
	}
	if out.Value != 42 {
		t.Errorf("Expected decoded value 42, got %d", out.Value)
	}
}

func TestJSONClient_Timeout(t *testing.T) {
	c := newJSONClient("test", Config{Timeout: 7}, "http://localhost", 30*time.Second, nil)
	if c.hc.Timeout != 7*time.Second {
		t.Errorf("Expected configured timeout, got %v", c.hc.Timeout)
	}
	c = newJSONClient("test", Config{}, "http://localhost", 30*time.Second, nil)
	if c.hc.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout, got %v", c.hc.Timeout)
	}
}
