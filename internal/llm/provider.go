package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/indicacoes/internal/model"
)

// ErrInvalidCategory is returned when a model answers outside the category enumeration
var ErrInvalidCategory = errors.New("category outside the allowed enumeration")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Annotate classifies one matter summary and extracts its location
	Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AnnotateRequest is the input for one annotation
type AnnotateRequest struct {
	Summary   string
	Model     string // overrides Config.Model
	MaxTokens int    // overrides Config.MaxTokens
}

// AnnotateResponse is a validated annotation
type AnnotateResponse struct {
	Category     model.Category
	Address      string
	Neighborhood string
	Model        string
	TokensUsed   int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 300,
	}
}

const systemPrompt = "Você classifica indicações legislativas de uma câmara municipal brasileira. Responda somente com JSON."

// BuildPrompt asks for the category and location of one summary as a JSON object
func BuildPrompt(summary string) string {
	var b strings.Builder
	b.WriteString("Analise a ementa abaixo de uma indicação legislativa.\n\n")
	b.WriteString("1. Classifique-a em exatamente uma destas categorias:\n")
	for _, c := range model.AllCategories() {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\n2. Extraia o endereço (rua, avenida ou travessa) e o bairro, se houver.\n\n")
	b.WriteString(`Responda apenas com um objeto JSON no formato {"category": "...", "address": "...", "neighborhood": "..."}. `)
	b.WriteString("Use string vazia para campos desconhecidos.\n\n")
	fmt.Fprintf(&b, "Ementa: %s", summary)
	return b.String()
}

type annotationPayload struct {
	Category     string `json:"category"`
	Address      string `json:"address"`
	Neighborhood string `json:"neighborhood"`
}

// parseAnnotation reads the JSON object out of a model reply, tolerating code fences and prose around it
func parseAnnotation(text string) (*AnnotateResponse, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in response: %q", truncate(text, 80))
	}

	var payload annotationPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal annotation: %w", err)
	}

	category := model.Category(strings.TrimSpace(payload.Category))
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, payload.Category)
	}

	return &AnnotateResponse{
		Category:     category,
		Address:      strings.TrimSpace(payload.Address),
		Neighborhood: strings.TrimSpace(payload.Neighborhood),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func pick[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
