package model

import (
	"strings"
	"time"
)

// Config holds the complete polscope configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Sources      SourcesConfig      `yaml:"sources" mapstructure:"sources"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures the outbound transport shared by all sources
type HTTPConfig struct {
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// SourcesConfig configures the three upstream clients
type SourcesConfig struct {
	// Budget bounds each source call, including rate-limit waits
	Budget       time.Duration      `yaml:"budget" mapstructure:"budget"`
	Legislative  LegislativeConfig  `yaml:"legislative" mapstructure:"legislative"`
	Encyclopedia EncyclopediaConfig `yaml:"encyclopedia" mapstructure:"encyclopedia"`
	News         NewsConfig         `yaml:"news" mapstructure:"news"`
}

// LegislativeConfig configures the Congress.gov client
type LegislativeConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"-" mapstructure:"api_key"`
	Limit   int    `yaml:"limit" mapstructure:"limit"`
}

// EncyclopediaConfig configures the Wikipedia client
type EncyclopediaConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NewsConfig configures the NewsAPI client
type NewsConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string `yaml:"-" mapstructure:"api_key"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
}

// LLMConfig configures the reasoning collaborator
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // groq, openai, anthropic, ollama, none
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"-" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
}

// RateLimitingConfig configures per-host outbound rate limits
type RateLimitingConfig struct {
	RequestsPerSecond float64    `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int        `yaml:"burst_size" mapstructure:"burst_size"`
	Hosts             []HostRate `yaml:"hosts" mapstructure:"hosts"`
}

// HostRate overrides the default limit for one upstream host, matched on host[:port]
type HostRate struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr"`
	Mode         string        `yaml:"mode" mapstructure:"mode"` // gin mode: debug, release, test
	RequestLimit time.Duration `yaml:"request_limit" mapstructure:"request_limit"`
}

// LogConfig configures zap
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// DefaultConfig returns sensible defaults. With zero credentials every source
// degrades to the fallback catalog and the assessment carries recomputed counts only.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:    "PolScope/0.1 (+https://github.com/ppiankov/polscope)",
			MaxBodyBytes: 2_000_000,
		},
		Sources: SourcesConfig{
			Budget: 10 * time.Second,
			Legislative: LegislativeConfig{
				BaseURL: "https://api.congress.gov/v3",
				Limit:   20,
			},
			Encyclopedia: EncyclopediaConfig{
				BaseURL: "https://en.wikipedia.org/api/rest_v1",
			},
			News: NewsConfig{
				BaseURL:  "https://newsapi.org/v2",
				PageSize: 5,
			},
		},
		LLM: LLMConfig{
			// Model is left empty so each provider applies its own default
			Provider:    "groq",
			Timeout:     30 * time.Second,
			MaxTokens:   1500,
			Temperature: 0.3,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
			Hosts: []HostRate{
				// 5,000 requests per hour per key
				{Host: "api.congress.gov", RequestsPerSecond: 1, BurstSize: 2},
				// developer plan: 100 requests per day
				{Host: "newsapi.org", RequestsPerSecond: 0.5, BurstSize: 1},
			},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Addr:         ":8000",
			Mode:         "release",
			RequestLimit: 60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// CredentialSet reports whether key is a real credential. Empty values and the
// placeholders shipped in .env.example count as absent.
func CredentialSet(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	return !(strings.HasPrefix(lower, "your_") && strings.HasSuffix(lower, "_here"))
}
