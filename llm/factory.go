package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Settings is the provider-neutral configuration New resolves into a client.
// Zero values keep the provider's defaults, except Temperature which is always applied.
type Settings struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	JSONMode    bool
}

// New builds the Model for s.Provider.
func New(ctx context.Context, s Settings) (Model, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q", s.Provider)
	}

	switch strings.ToLower(s.Provider) {
	case ProviderGroq, ProviderOpenAI:
		cfg := DefaultGroqConfig(s.APIKey)
		if strings.EqualFold(s.Provider, ProviderOpenAI) {
			cfg = DefaultOpenAIConfig(s.APIKey)
		}
		if s.Model != "" {
			cfg.Model = s.Model
		}
		if s.BaseURL != "" {
			cfg.BaseURL = s.BaseURL
		}
		if s.Timeout > 0 {
			cfg.Timeout = s.Timeout
		}
		cfg.Temperature = s.Temperature
		cfg.MaxTokens = s.MaxTokens
		cfg.JSONMode = cfg.JSONMode || s.JSONMode
		return NewOpenAIClient(cfg), nil

	case ProviderGemini:
		cfg := DefaultGeminiConfig(s.APIKey)
		if s.Model != "" {
			cfg.Model = s.Model
		}
		if s.Timeout > 0 {
			cfg.Timeout = s.Timeout
		}
		cfg.BaseURL = s.BaseURL
		cfg.Temperature = s.Temperature
		cfg.MaxTokens = s.MaxTokens
		return NewGeminiClient(ctx, cfg)

	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want groq, openai or gemini)", s.Provider)
	}
}
