package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/indicacoes/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider annotates through an OpenAI-compatible chat completions API
type OpenAIProvider struct {
	client  *openai.Client
	config  Config
	timeout time.Duration
}

// NewOpenAIProvider requires an API key; BaseURL selects a compatible endpoint
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required (set OPENAI_API_KEY)")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: util.NewTransport(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		timeout: timeout,
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

// IsAvailable lists models, which only needs a valid key
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

func (p *OpenAIProvider) Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	modelName := pick(req.Model, p.config.Model, openai.GPT4oMini)
	completion, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req.Summary)},
		},
		MaxTokens: pick(req.MaxTokens, p.config.MaxTokens, 300),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, openAIError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai: completion has no choices")
	}

	annotation, err := parseAnnotation(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	annotation.Model = pick(completion.Model, modelName)
	annotation.TokensUsed = completion.Usage.TotalTokens
	return annotation, nil
}

// openAIError maps client errors onto APIError so callers see one error shape
func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: "openai", StatusCode: apiErr.HTTPStatusCode, Kind: apiErr.Type, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{Provider: "openai", StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return fmt.Errorf("openai request failed: %w", err)
}
