package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/polscope/internal/model"
)

// Provider names accepted by NewProvider
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderNone      = "none"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint
const GroqBaseURL = "https://api.groq.com/openai/v1"

// DefaultGroqModel is the model the hosted assessment uses by default
const DefaultGroqModel = "llama-3.1-8b-instant"

// NewProvider creates a new LLM provider based on configuration.
// A nil provider with a nil error means the LLM is disabled.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case ProviderGroq:
		if config.BaseURL == "" {
			config.BaseURL = GroqBaseURL
		}
		if config.Model == "" {
			config.Model = DefaultGroqModel
		}
		return newOpenAICompatible(ProviderGroq, config)

	case ProviderOpenAI:
		return NewOpenAIProvider(config)

	case ProviderAnthropic, "claude":
		return NewAnthropicProvider(config)

	case ProviderOllama:
		return NewOllamaProvider(config)

	case "", ProviderNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: groq, openai, anthropic, ollama, none)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	apiKey := modelConfig.APIKey
	if !model.CredentialSet(apiKey) {
		apiKey = ""
	}
	return Config{
		Provider:    modelConfig.Provider,
		Model:       modelConfig.Model,
		APIKey:      apiKey,
		BaseURL:     modelConfig.BaseURL,
		Timeout:     modelConfig.Timeout,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
		HTTPProxy:   httpConfig.HTTPProxy,
		HTTPSProxy:  httpConfig.HTTPSProxy,
		NoProxy:     httpConfig.NoProxy,
	}
}
