// Package llm translates provider-agnostic chat requests into the OpenAI,
// Anthropic and Gemini wire formats and normalizes their responses.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.aimuz.me/quill/internal/types"
)

// Provider identifies an LLM vendor.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Providers lists every supported vendor.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini}

// ParseProvider resolves a case-insensitive vendor name.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "gemini", "google":
		return ProviderGemini, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// DisplayName returns the vendor name as shown to users.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderGemini:
		return "Gemini"
	}
	return string(p)
}

// DefaultBaseURL returns the API root used when no endpoint override is set.
func DefaultBaseURL(p Provider) string {
	switch p {
	case ProviderAnthropic:
		return "https://api.anthropic.com/v1"
	case ProviderGemini:
		return "https://generativelanguage.googleapis.com/v1beta"
	default:
		return "https://api.openai.com/v1"
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-agnostic chat request.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response is the normalized completion.
type Response struct {
	Text  string
	Usage types.Usage
}

// Completer performs chat completions.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Config configures a Completer.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; mainly for tests.
	HTTPClient *http.Client
}

// completerConfig holds all parameters needed by completers.
type completerConfig struct {
	http     *http.Client
	provider Provider
	apiKey   string
	baseURL  string
	timeout  time.Duration
}

// NewCompleter creates a Completer for the given provider.
func NewCompleter(p Provider, c Config) (Completer, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, p.DisplayName())
	}

	cfg := completerConfig{
		http:     c.HTTPClient,
		provider: p,
		apiKey:   c.APIKey,
		baseURL:  strings.TrimRight(c.BaseURL, "/"),
		timeout:  c.Timeout,
	}
	if cfg.http == nil {
		cfg.http = &http.Client{}
	}
	if cfg.baseURL == "" {
		cfg.baseURL = DefaultBaseURL(p)
	}

	switch p {
	case ProviderOpenAI:
		return &openaiCompleter{cfg: cfg}, nil
	case ProviderAnthropic:
		return &claudeCompleter{cfg: cfg}, nil
	case ProviderGemini:
		return &geminiCompleter{cfg: cfg}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, string(p))
}
