package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetch timeout bounds for the portal profile
const (
	MinFetchTimeout = 8 * time.Second
	MaxFetchTimeout = 15 * time.Second
)

// Config is the complete runtime configuration
type Config struct {
	Portal       PortalConfig       `yaml:"portal" mapstructure:"portal"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// PortalConfig selects the source portal and the fixed search filter
type PortalConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`             // Origin, also used to absolutize links
	SearchPath    string `yaml:"search_path" mapstructure:"search_path"`       // Listing endpoint path
	DocumentType  string `yaml:"document_type" mapstructure:"document_type"`   // SAPL "tipo" (8 = Indicação)
	Year          string `yaml:"year" mapstructure:"year"`                     // SAPL "ano"
	Author        string `yaml:"author" mapstructure:"author"`                 // SAPL "autoria__autor", empty for all
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"` // Check robots.txt before page 1
}

// HTTPConfig controls outbound requests to the portal
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per page request
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ConcurrencyConfig bounds the page fan-out
type ConcurrencyConfig struct {
	// MaxPages is the number of pages fetched at once after page 1. 0 = one worker per page.
	MaxPages int `yaml:"max_pages" mapstructure:"max_pages"`
}

// RateLimitingConfig throttles requests per portal host. 0 disables.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the annotation cache used by the AI annotator
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// LLMConfig selects the optional AI annotator. Empty provider = heuristic only.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, ""
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig controls the delivery HTTP server
type ServerConfig struct {
	ListenAddress        string        `yaml:"listen_address" mapstructure:"listen_address"`
	ReadTimeout          time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout          time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	AggregationTimeout   time.Duration `yaml:"aggregation_timeout" mapstructure:"aggregation_timeout"`
	CacheMaxAge          time.Duration `yaml:"cache_max_age" mapstructure:"cache_max_age"`                   // s-maxage
	StaleWhileRevalidate time.Duration `yaml:"stale_while_revalidate" mapstructure:"stale_while_revalidate"` // grace window
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the configuration for the Bento Gonçalves chamber portal
func DefaultConfig() *Config {
	return &Config{
		Portal: PortalConfig{
			BaseURL:      "https://sapl.camarabento.rs.gov.br",
			SearchPath:   "/materia/pesquisar-materia",
			DocumentType: "8",
			Year:         strconv.Itoa(time.Now().Year()),
			Author:       "400",
		},
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			MaxBodyBytes: 5_000_000,
		},
		Concurrency: ConcurrencyConfig{
			MaxPages: 0,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".indicacoes-cache",
			MemoryTTL: 24 * time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 300,
		},
		Server: ServerConfig{
			ListenAddress:        ":8080",
			ReadTimeout:          10 * time.Second,
			WriteTimeout:         90 * time.Second,
			IdleTimeout:          120 * time.Second,
			AggregationTimeout:   60 * time.Second,
			CacheMaxAge:          12 * time.Hour,
			StaleWhileRevalidate: time.Hour,
		},
	}
}

// Validate checks the configuration for values the pipeline cannot work with
func (c *Config) Validate() error {
	base, err := url.Parse(c.Portal.BaseURL)
	if err != nil {
		return fmt.Errorf("portal.base_url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("portal.base_url must be absolute, got %q", c.Portal.BaseURL)
	}
	if !strings.HasPrefix(c.Portal.SearchPath, "/") {
		return fmt.Errorf("portal.search_path must start with /, got %q", c.Portal.SearchPath)
	}
	if c.HTTP.Timeout < MinFetchTimeout || c.HTTP.Timeout > MaxFetchTimeout {
		return fmt.Errorf("http.timeout must be between %s and %s, got %s", MinFetchTimeout, MaxFetchTimeout, c.HTTP.Timeout)
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be positive")
	}
	if c.Concurrency.MaxPages < 0 {
		return fmt.Errorf("concurrency.max_pages must be >= 0")
	}
	if c.RateLimiting.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limiting.requests_per_second must be >= 0")
	}
	if c.Server.CacheMaxAge < 0 || c.Server.StaleWhileRevalidate < 0 {
		return fmt.Errorf("server cache durations must be >= 0")
	}
	return nil
}
