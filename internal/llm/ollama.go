package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const ollamaBaseURL = "http://localhost:11434"

// OllamaProvider annotates with a local model through /api/generate
type OllamaProvider struct {
	client *jsonClient
	config Config
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Format  string          `json:"format,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

func decodeOllamaError(body []byte) (string, string) {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return "", ""
	}
	return "", e.Error
}

// NewOllamaProvider requires a model name; there is no server-side default
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("ollama: model is required (e.g. llama3.1:8b, qwen2.5)")
	}

	// local models are slower to answer than hosted APIs
	client := newJSONClient("ollama", config, ollamaBaseURL, 60*time.Second, decodeOllamaError)
	return &OllamaProvider{client: client, config: config}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

// IsAvailable reports whether the daemon answers /api/tags
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	return p.client.get(ctx, "/api/tags") == nil
}

func (p *OllamaProvider) Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error) {
	in := generateRequest{
		Model:  pick(req.Model, p.config.Model),
		System: systemPrompt,
		Prompt: BuildPrompt(req.Summary),
		Format: "json",
		Options: generateOptions{
			NumPredict: pick(req.MaxTokens, p.config.MaxTokens, 300),
		},
	}

	var out generateResponse
	if err := p.client.post(ctx, "/api/generate", in, &out); err != nil {
		return nil, err
	}

	annotation, err := parseAnnotation(out.Response)
	if err != nil {
		return nil, err
	}
	annotation.Model = pick(out.Model, in.Model)
	annotation.TokensUsed = out.PromptEvalCount + out.EvalCount
	return annotation, nil
}
