package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-haiku-latest"
)

// AnthropicProvider annotates through the Anthropic Messages API
type AnthropicProvider struct {
	client *jsonClient
	config Config
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// text joins every text block of the reply
func (r *messagesResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

func decodeAnthropicError(body []byte) (string, string) {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return "", ""
	}
	return e.Error.Type, e.Error.Message
}

// NewAnthropicProvider requires an API key
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required (set ANTHROPIC_API_KEY)")
	}

	client := newJSONClient("anthropic", config, anthropicBaseURL, 30*time.Second, decodeAnthropicError)
	client.headers.Set("x-api-key", config.APIKey)
	client.headers.Set("anthropic-version", anthropicVersion)

	return &AnthropicProvider{client: client, config: config}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// IsAvailable spends one output token to verify the key
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	ping := messagesRequest{
		Model:     pick(p.config.Model, anthropicDefaultModel),
		Messages:  []message{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	}
	return p.client.post(ctx, "/v1/messages", ping, &messagesResponse{}) == nil
}

func (p *AnthropicProvider) Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error) {
	modelName := pick(req.Model, p.config.Model, anthropicDefaultModel)

	var reply messagesResponse
	err := p.client.post(ctx, "/v1/messages", messagesRequest{
		Model:     modelName,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: BuildPrompt(req.Summary)}},
		MaxTokens: pick(req.MaxTokens, p.config.MaxTokens, 300),
	}, &reply)
	if err != nil {
		return nil, err
	}

	text := reply.text()
	if text == "" {
		return nil, fmt.Errorf("anthropic: reply has no text content")
	}

	annotation, err := parseAnnotation(text)
	if err != nil {
		return nil, err
	}
	annotation.Model = pick(reply.Model, modelName)
	annotation.TokensUsed = reply.Usage.InputTokens + reply.Usage.OutputTokens
	return annotation, nil
}
