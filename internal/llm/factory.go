package llm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ppiankov/indicacoes/internal/model"
)

type constructor func(Config) (Provider, error)

// erase adapts a concrete constructor so a failed call yields a nil Provider
// rather than a typed nil
func erase[P Provider](newP func(Config) (P, error)) constructor {
	return func(c Config) (Provider, error) {
		p, err := newP(c)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// providers maps accepted names (and aliases) to constructors
var providers = map[string]constructor{
	"openai":    erase(NewOpenAIProvider),
	"anthropic": erase(NewAnthropicProvider),
	"claude":    erase(NewAnthropicProvider),
	"ollama":    erase(NewOllamaProvider),
}

// SupportedProviders lists the accepted provider names, sorted
func SupportedProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewProvider creates a provider by name. An empty name disables AI annotation
// and returns a nil provider.
func NewProvider(config Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(config.Provider))
	if name == "" {
		return nil, nil
	}
	build, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q (supported: %s)", config.Provider, strings.Join(SupportedProviders(), ", "))
	}
	return build(config)
}

// ConfigFromModel converts the application config; providers share the portal proxies
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:   llmConfig.Provider,
		Model:      llmConfig.Model,
		APIKey:     llmConfig.APIKey,
		BaseURL:    llmConfig.BaseURL,
		Timeout:    llmConfig.Timeout,
		MaxTokens:  llmConfig.MaxTokens,
		HTTPProxy:  httpConfig.HTTPProxy,
		HTTPSProxy: httpConfig.HTTPSProxy,
		NoProxy:    httpConfig.NoProxy,
	}
}
