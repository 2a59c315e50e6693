package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"go.aimuz.me/quill/llm"
)

var builtinModels = map[llm.Provider][]string{
	llm.ProviderOpenAI:    {"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1", "gpt-3.5-turbo"},
	llm.ProviderAnthropic: {"claude-3-5-haiku-latest", "claude-3-5-sonnet-latest", "claude-3-7-sonnet-latest", "claude-sonnet-4-0"},
	llm.ProviderGemini:    {"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.5-flash"},
}

var envKeys = map[llm.Provider]string{
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderGemini:    "GEMINI_API_KEY",
}

// DefaultModel returns the model selected after switching to p.
func DefaultModel(p llm.Provider) string {
	if models := builtinModels[p]; len(models) > 0 {
		return models[0]
	}
	return builtinModels[llm.ProviderOpenAI][0]
}

// ModelsFor lists built-in then user-added models for p.
func (s *Settings) ModelsFor(p llm.Provider) []string {
	models := slices.Clone(builtinModels[p])
	for _, m := range s.CustomModels[p] {
		if !slices.Contains(models, m) {
			models = append(models, m)
		}
	}
	return models
}

// SetProvider switches the active provider. The model is reset to the
// provider's default unless it already belongs to it.
func (s *Settings) SetProvider(p llm.Provider) {
	if s.Provider == p {
		return
	}
	s.Provider = p
	if !slices.Contains(s.ModelsFor(p), s.Model) {
		s.Model = DefaultModel(p)
	}
}

// SetModel selects a model for the active provider, remembering it as a
// custom model when it is not built in.
func (s *Settings) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("model required")
	}
	if !slices.Contains(builtinModels[s.Provider], model) && !slices.Contains(s.CustomModels[s.Provider], model) {
		if s.CustomModels == nil {
			s.CustomModels = map[llm.Provider][]string{}
		}
		s.CustomModels[s.Provider] = append(s.CustomModels[s.Provider], model)
	}
	s.Model = model
	return nil
}

// APIKeyFor returns the stored key for p, falling back to the provider's
// environment variable.
func (s *Settings) APIKeyFor(p llm.Provider) string {
	if key := strings.TrimSpace(s.APIKeys[p]); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(envKeys[p]))
}

// SetAPIKey stores or, when key is empty, removes the key for p.
func (s *Settings) SetAPIKey(p llm.Provider, key string) {
	if s.APIKeys == nil {
		s.APIKeys = map[llm.Provider]string{}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		delete(s.APIKeys, p)
		return
	}
	s.APIKeys[p] = key
}

// EndpointFor returns the API root for p.
func (s *Settings) EndpointFor(p llm.Provider) string {
	if ep := strings.TrimSpace(s.Endpoints[p]); ep != "" {
		return ep
	}
	return llm.DefaultBaseURL(p)
}

// SetEndpoint overrides, or with an empty url resets, the API root for p.
func (s *Settings) SetEndpoint(p llm.Provider, url string) {
	if s.Endpoints == nil {
		s.Endpoints = map[llm.Provider]string{}
	}
	url = strings.TrimSpace(url)
	if url == "" {
		delete(s.Endpoints, p)
		return
	}
	s.Endpoints[p] = url
}

// CompleterConfig returns the llm configuration for the active provider.
func (s *Settings) CompleterConfig() llm.Config {
	return llm.Config{
		APIKey:  s.APIKeyFor(s.Provider),
		BaseURL: s.EndpointFor(s.Provider),
		Timeout: s.Timeout(),
	}
}

// LoadEnv loads a .env file from dir into the process environment. Variables
// already set win. A missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
