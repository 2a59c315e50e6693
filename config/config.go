// Package config handles application settings.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.aimuz.me/quill/internal/types"
	"go.aimuz.me/quill/llm"
	"go.aimuz.me/quill/secret"
)

const (
	appName          = "quill"
	settingsFileName = "settings.json"

	DefaultTimeoutSeconds = 60
)

// ResultAction selects how a finished result reaches the user.
type ResultAction string

const (
	ResultCopy    ResultAction = "copy"
	ResultReplace ResultAction = "replace"
)

// Hotkeys holds one accelerator string per action.
type Hotkeys struct {
	CommonQuestion string `json:"common_question"`
	Correction     string `json:"correction"`
	Translation    string `json:"translation"`
	VariableNames  string `json:"variable_names"`
}

// Settings is the persisted application configuration.
type Settings struct {
	Provider     llm.Provider              `json:"provider"`
	APIKeys      map[llm.Provider]string   `json:"api_keys,omitempty"`
	Endpoints    map[llm.Provider]string   `json:"endpoints,omitempty"`
	Model        string                    `json:"model"`
	CustomModels map[llm.Provider][]string `json:"custom_models,omitempty"`

	RequestTimeoutSeconds int `json:"request_timeout_seconds"`

	Hotkeys Hotkeys `json:"hotkeys"`

	TonePresets          []types.TonePreset `json:"tone_presets"`
	SelectedTonePresetID string             `json:"selected_tone_preset_id"`

	ShowNotifications         bool         `json:"show_notifications"`
	ShowProgressNotifications bool         `json:"show_progress_notifications"`
	ResultAction              ResultAction `json:"result_action"`
	CacheEnabled              bool         `json:"cache_enabled"`

	// Translation goes NativeLanguage -> TargetLanguage, anything else ->
	// NativeLanguage. ISO 639-1 codes.
	NativeLanguage string `json:"native_language"`
	TargetLanguage string `json:"target_language"`
}

// Default returns settings with every field at its default.
func Default() *Settings {
	return &Settings{
		Provider:              llm.ProviderOpenAI,
		APIKeys:               map[llm.Provider]string{},
		Model:                 DefaultModel(llm.ProviderOpenAI),
		RequestTimeoutSeconds: DefaultTimeoutSeconds,
		Hotkeys: Hotkeys{
			CommonQuestion: "Ctrl+Shift+Alt+Q",
			Correction:     "Ctrl+Shift+Alt+Y",
			Translation:    "Ctrl+Shift+Alt+T",
			VariableNames:  "Ctrl+Shift+Alt+V",
		},
		TonePresets:               DefaultTonePresets(),
		SelectedTonePresetID:      NoToneID,
		ShowNotifications:         true,
		ShowProgressNotifications: true,
		ResultAction:              ResultCopy,
		CacheEnabled:              true,
		NativeLanguage:            "ko",
		TargetLanguage:            "en",
	}
}

// Timeout returns the per-request timeout.
func (s *Settings) Timeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// normalize repairs values a hand-edited or older file may carry.
func (s *Settings) normalize() {
	p, err := llm.ParseProvider(string(s.Provider))
	if err != nil {
		p = llm.ProviderOpenAI
	}
	s.Provider = p
	if s.Model == "" {
		s.Model = DefaultModel(s.Provider)
	}
	if s.APIKeys == nil {
		s.APIKeys = map[llm.Provider]string{}
	}
	if s.RequestTimeoutSeconds <= 0 {
		s.RequestTimeoutSeconds = DefaultTimeoutSeconds
	}
	if s.ResultAction != ResultReplace {
		s.ResultAction = ResultCopy
	}
	if s.NativeLanguage == "" {
		s.NativeLanguage = "ko"
	}
	if s.TargetLanguage == "" {
		s.TargetLanguage = "en"
	}
	s.InitTonePresets()
}

// ─────────────────────────────────────────────────────────────────────────────
// Store
// ─────────────────────────────────────────────────────────────────────────────

// Store reads and writes the sealed settings file. Concurrent writers in other
// processes are last-writer-wins.
type Store struct {
	mu        sync.Mutex
	path      string
	protector secret.Protector
}

// NewStore returns a Store for path. A nil protector stores plain JSON.
func NewStore(path string, p secret.Protector) *Store {
	if p == nil {
		p = secret.Plain{}
	}
	return &Store{path: path, protector: p}
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Dir returns the application data directory for this user.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

// SettingsPath returns the settings file inside dir.
func SettingsPath(dir string) string {
	return filepath.Join(dir, settingsFileName)
}

// Load reads the settings. A missing file yields defaults. A file that cannot
// be decrypted or decoded yields defaults together with the error, so callers
// can log and continue.
func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Settings, error) {
	cfg := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read settings: %w", err)
	}

	plain, err := s.open(data)
	if err != nil {
		return Default(), err
	}

	if err := json.Unmarshal(plain, cfg); err != nil {
		return Default(), fmt.Errorf("unmarshal settings: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// open decrypts data. Files written before encryption was enabled are plain
// JSON and are accepted as-is; the next Save seals them.
func (s *Store) open(data []byte) ([]byte, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
		return trimmed, nil
	}
	plain, err := s.protector.Open(data)
	if err != nil {
		return nil, fmt.Errorf("decrypt settings: %w", err)
	}
	return plain, nil
}

// Save writes the settings.
func (s *Store) Save(cfg *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cfg)
}

func (s *Store) save(cfg *Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	sealed, err := s.protector.Seal(data)
	if err != nil {
		return fmt.Errorf("encrypt settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Update loads the settings, applies fn and saves the result. Unreadable
// settings are replaced by defaults before fn runs.
func (s *Store) Update(fn func(*Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		slog.Warn("load settings, starting from defaults", "path", s.path, "error", err)
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return s.save(cfg)
}
