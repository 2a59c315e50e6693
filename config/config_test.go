package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.aimuz.me/quill/llm"
)

// xorProtector is a reversible stand-in for DPAPI.
type xorProtector struct{ fail bool }

func (p xorProtector) Seal(b []byte) ([]byte, error) {
	out := make([]byte, len(b)+1)
	out[0] = 0x01
	for i, c := range b {
		out[i+1] = c ^ 0x5A
	}
	return out, nil
}

func (p xorProtector) Open(b []byte) ([]byte, error) {
	if p.fail || len(b) == 0 || b[0] != 0x01 {
		return nil, errors.New("bad blob")
	}
	out := make([]byte, len(b)-1)
	for i, c := range b[1:] {
		out[i] = c ^ 0x5A
	}
	return out, nil
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"), xorProtector{})

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != llm.ProviderOpenAI {
		t.Errorf("provider = %q, want openai", cfg.Provider)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", cfg.Model)
	}
	if cfg.RequestTimeoutSeconds != 60 {
		t.Errorf("timeout = %d, want 60", cfg.RequestTimeoutSeconds)
	}
	if cfg.SelectedTonePresetID != NoToneID {
		t.Errorf("selected tone = %q, want %q", cfg.SelectedTonePresetID, NoToneID)
	}
	if cfg.Hotkeys.Correction != "Ctrl+Shift+Alt+Y" || cfg.Hotkeys.Translation != "Ctrl+Shift+Alt+T" {
		t.Errorf("hotkeys = %+v", cfg.Hotkeys)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := NewStore(path, xorProtector{})

	cfg := Default()
	cfg.SetProvider(llm.ProviderAnthropic)
	cfg.SetAPIKey(llm.ProviderAnthropic, "sk-ant-secret")
	cfg.RequestTimeoutSeconds = 15
	cfg.ResultAction = ResultReplace
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if bytes.Contains(raw, []byte("sk-ant-secret")) {
		t.Errorf("settings file stores the api key in plain text")
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Provider != llm.ProviderAnthropic || got.APIKeyFor(llm.ProviderAnthropic) != "sk-ant-secret" {
		t.Errorf("provider/key = %q/%q", got.Provider, got.APIKeyFor(llm.ProviderAnthropic))
	}
	if got.Timeout() != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", got.Timeout())
	}
	if got.ResultAction != ResultReplace {
		t.Errorf("result action = %q", got.ResultAction)
	}
	if got.Model != DefaultModel(llm.ProviderAnthropic) {
		t.Errorf("model = %q, want %q", got.Model, DefaultModel(llm.ProviderAnthropic))
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	legacy := `{"provider":"Gemini","api_keys":{"gemini":"g-key"},"request_timeout_seconds":0}`
	if err := os.WriteFile(path, []byte(legacy), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewStore(path, xorProtector{}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != llm.ProviderGemini {
		t.Errorf("provider = %q, want gemini", cfg.Provider)
	}
	if cfg.RequestTimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("timeout = %d, want default", cfg.RequestTimeoutSeconds)
	}
	if !cfg.ShowNotifications || !cfg.CacheEnabled {
		t.Errorf("boolean defaults lost: %+v", cfg)
	}
	if len(cfg.TonePresets) != len(DefaultTonePresets()) {
		t.Errorf("got %d tone presets, want defaults", len(cfg.TonePresets))
	}
	if cfg.Hotkeys.Translation != "Ctrl+Shift+Alt+T" {
		t.Errorf("hotkeys = %+v", cfg.Hotkeys)
	}
}

func TestLoadUndecryptableReturnsDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte{0xFF, 0x00, 0x13}, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewStore(path, xorProtector{fail: true}).Load()
	if err == nil {
		t.Fatal("expected decrypt error")
	}
	if cfg == nil || cfg.Model != "gpt-4o-mini" {
		t.Errorf("expected defaults alongside error, got %+v", cfg)
	}
}

func TestUpdate(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"), xorProtector{})

	err := store.Update(func(s *Settings) error {
		return s.SetModel("gpt-4o-2024-08-06")
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	cfg, _ := store.Load()
	if cfg.Model != "gpt-4o-2024-08-06" {
		t.Errorf("model = %q", cfg.Model)
	}
	models := cfg.ModelsFor(llm.ProviderOpenAI)
	if models[len(models)-1] != "gpt-4o-2024-08-06" {
		t.Errorf("custom model not remembered: %v", models)
	}

	wantErr := errors.New("abort")
	if err := store.Update(func(*Settings) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("Update error = %v, want %v", err, wantErr)
	}
}

func TestAPIKeyEnvFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	cfg := Default()

	if got := cfg.APIKeyFor(llm.ProviderGemini); got != "from-env" {
		t.Errorf("APIKeyFor = %q, want env value", got)
	}
	cfg.SetAPIKey(llm.ProviderGemini, "stored")
	if got := cfg.APIKeyFor(llm.ProviderGemini); got != "stored" {
		t.Errorf("APIKeyFor = %q, want stored value", got)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnv(dir); err != nil {
		t.Fatalf("LoadEnv without file: %v", err)
	}

	t.Setenv("QUILL_TEST_ENV", "")
	os.Unsetenv("QUILL_TEST_ENV")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("QUILL_TEST_ENV=loaded\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnv(dir); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("QUILL_TEST_ENV"); got != "loaded" {
		t.Errorf("QUILL_TEST_ENV = %q, want loaded", got)
	}
}

func TestEndpointFor(t *testing.T) {
	cfg := Default()
	if got := cfg.EndpointFor(llm.ProviderAnthropic); got != "https://api.anthropic.com/v1" {
		t.Errorf("default endpoint = %q", got)
	}
	cfg.SetEndpoint(llm.ProviderAnthropic, "https://proxy.local/v1")
	if got := cfg.EndpointFor(llm.ProviderAnthropic); got != "https://proxy.local/v1" {
		t.Errorf("override endpoint = %q", got)
	}
	cfg.SetEndpoint(llm.ProviderAnthropic, "")
	if got := cfg.EndpointFor(llm.ProviderAnthropic); got != "https://api.anthropic.com/v1" {
		t.Errorf("reset endpoint = %q", got)
	}
}
