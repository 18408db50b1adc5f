package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/polscope/internal/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{name: "disabled empty", config: Config{}, wantNil: true},
		{name: "disabled none", config: Config{Provider: "none"}, wantNil: true},
		{name: "groq", config: Config{Provider: "groq", APIKey: "k"}, wantName: ProviderGroq},
		{name: "groq case-insensitive", config: Config{Provider: " GROQ ", APIKey: "k"}, wantName: ProviderGroq},
		{name: "groq missing key", config: Config{Provider: "groq"}, wantErr: true},
		{name: "openai", config: Config{Provider: "openai", APIKey: "k"}, wantName: ProviderOpenAI},
		{name: "anthropic", config: Config{Provider: "anthropic", APIKey: "k"}, wantName: ProviderAnthropic},
		{name: "claude alias", config: Config{Provider: "claude", APIKey: "k"}, wantName: ProviderAnthropic},
		{name: "ollama without key", config: Config{Provider: "ollama", Model: "llama3.1"}, wantName: ProviderOllama},
		{name: "unknown", config: Config{Provider: "gemini"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantNil {
				if p != nil {
					t.Errorf("Expected nil provider, got %s", p.Name())
				}
				return
			}
			if p == nil || p.Name() != tt.wantName {
				t.Errorf("Expected provider %s, got %v", tt.wantName, p)
			}
		})
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{
		Provider:    "groq",
		Model:       "m",
		APIKey:      "your_groq_api_key_here",
		Timeout:     7 * time.Second,
		MaxTokens:   42,
		Temperature: 0.5,
	}, model.HTTPConfig{HTTPSProxy: "http://proxy:3128"})

	if cfg.APIKey != "" {
		t.Errorf("Placeholder key must be dropped, got %q", cfg.APIKey)
	}
	if cfg.Timeout != 7*time.Second || cfg.MaxTokens != 42 || cfg.Temperature != 0.5 {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.HTTPSProxy != "http://proxy:3128" {
		t.Errorf("Expected proxy to carry over, got %q", cfg.HTTPSProxy)
	}

	if _, err := NewProvider(cfg); err == nil {
		t.Error("Expected missing-key error for placeholder credential")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGroq || cfg.Model != DefaultGroqModel {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestNewProvider_DefaultModelPerProvider(t *testing.T) {
	tests := []struct {
		provider  string
		wantModel string
		reply     string
	}{
		{provider: ProviderGroq, wantModel: DefaultGroqModel, reply: `{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`},
		{provider: ProviderOpenAI, wantModel: "gpt-4o-mini", reply: `{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`},
		{provider: ProviderAnthropic, wantModel: "claude-3-5-haiku-20241022", reply: `{"content":[{"type":"text","text":"{}"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			var gotModel string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Model string `json:"model"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				gotModel = body.Model
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer server.Close()

			llmCfg := model.DefaultConfig().LLM
			llmCfg.Provider = tt.provider
			llmCfg.APIKey = "test-key"
			llmCfg.BaseURL = server.URL

			p, err := NewProvider(ConfigFromModel(llmCfg, model.HTTPConfig{}))
			if err != nil {
				t.Fatalf("Failed to create provider: %v", err)
			}
			if _, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err != nil {
				t.Fatalf("Complete failed: %v", err)
			}
			if gotModel != tt.wantModel {
				t.Errorf("Expected model %s, got %s", tt.wantModel, gotModel)
			}
		})
	}
}
