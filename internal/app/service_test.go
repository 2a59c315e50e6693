package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.aimuz.me/quill/config"
	"go.aimuz.me/quill/hotkey"
	"go.aimuz.me/quill/llm"
	"go.aimuz.me/quill/notify"
)

type staticSelection string

func (s staticSelection) GetSelectedText(context.Context) string { return string(s) }

type memClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *memClipboard) Text() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *memClipboard) SetText(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = s
	return nil
}

func (c *memClipboard) Clear() error { return c.SetText("") }

type countingKeys struct {
	mu     sync.Mutex
	pastes int
}

func (k *countingKeys) Copy() error { return nil }

func (k *countingKeys) Paste() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pastes++
	return nil
}

type notification struct{ title, message string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{title, message})
}

func (n *recordingNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		out = append(out, s.title)
	}
	return out
}

func (n *recordingNotifier) find(title string) (notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.sent {
		if s.title == title {
			return s, true
		}
	}
	return notification{}, false
}

type fakeHotkeys struct {
	accels  map[hotkey.Action]string
	handler hotkey.Handler
	err     error
	closed  bool
}

func (f *fakeHotkeys) Register(accels map[hotkey.Action]string, h hotkey.Handler) error {
	f.accels = accels
	f.handler = h
	return f.err
}

func (f *fakeHotkeys) Close() error {
	f.closed = true
	return nil
}

type serviceFixture struct {
	svc       *Service
	completer *mockCompleter
	clipboard *memClipboard
	keys      *countingKeys
	notifier  *recordingNotifier
	hotkeys   *fakeHotkeys
}

func newServiceFixture(t *testing.T, selected string, edit func(*config.Settings)) *serviceFixture {
	t.Helper()

	store := config.NewStore(filepath.Join(t.TempDir(), "settings.json"), nil)
	if err := store.Update(func(s *config.Settings) error {
		s.SetAPIKey(llm.ProviderOpenAI, "sk-test")
		if edit != nil {
			edit(s)
		}
		return nil
	}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	f := &serviceFixture{
		completer: &mockCompleter{response: "result"},
		clipboard: &memClipboard{},
		keys:      &countingKeys{},
		notifier:  &recordingNotifier{},
		hotkeys:   &fakeHotkeys{},
	}
	f.svc = New(Options{
		Store:     store,
		Selection: staticSelection(selected),
		Clipboard: f.clipboard,
		Keys:      f.keys,
		Hotkeys:   f.hotkeys,
		Notifier:  f.notifier,
		NewCompleter: func(llm.Provider, llm.Config) (llm.Completer, error) {
			return f.completer, nil
		},
	})
	return f
}

func TestHandleNoSelection(t *testing.T) {
	f := newServiceFixture(t, "  ", nil)

	f.svc.handle(context.Background(), hotkey.ActionTranslation)

	n, ok := f.notifier.find(notify.TitleNoSelection)
	if !ok {
		t.Fatalf("notifications = %v, want %q", f.notifier.titles(), notify.TitleNoSelection)
	}
	if n.message != "Please select some text to translate." {
		t.Errorf("message = %q", n.message)
	}
	if f.completer.calls != 0 {
		t.Errorf("completer called %d times", f.completer.calls)
	}
}

func TestHandleCopiesResult(t *testing.T) {
	f := newServiceFixture(t, "I goed home", nil)
	f.completer.response = "I went home"

	f.svc.handle(context.Background(), hotkey.ActionCorrection)

	if f.clipboard.text != "I went home" {
		t.Errorf("clipboard = %q, want %q", f.clipboard.text, "I went home")
	}
	if f.keys.pastes != 0 {
		t.Errorf("pasted %d times in copy mode", f.keys.pastes)
	}
	if _, ok := f.notifier.find(notify.TitleProcessing); !ok {
		t.Errorf("no progress notification in %v", f.notifier.titles())
	}
	if n, ok := f.notifier.find("Correction complete"); !ok || n.message != "I went home" {
		t.Errorf("result notification = %+v, %v", n, ok)
	}
}

func TestHandleReplacesFirstVariableName(t *testing.T) {
	f := newServiceFixture(t, "number of users", func(s *config.Settings) {
		s.ResultAction = config.ResultReplace
	})
	f.completer.response = "userCount\ntotalUsers\nnumUsers"

	f.svc.handle(context.Background(), hotkey.ActionVariableNames)

	if f.clipboard.text != "userCount" {
		t.Errorf("clipboard = %q, want %q", f.clipboard.text, "userCount")
	}
	if f.keys.pastes != 1 {
		t.Errorf("pastes = %d, want 1", f.keys.pastes)
	}
	n, ok := f.notifier.find("Variable names")
	if !ok {
		t.Fatalf("notifications = %v", f.notifier.titles())
	}
	if want := "1. userCount\n2. totalUsers\n3. numUsers"; n.message != want {
		t.Errorf("message = %q, want %q", n.message, want)
	}
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
	}{
		{"timeout", llm.ErrTimeout, notify.TitleTimeout},
		{"provider", &llm.ProviderError{Provider: llm.ProviderOpenAI, StatusCode: 500, Body: "boom"}, notify.TitleError},
		{"unparseable", &llm.ParseError{Provider: llm.ProviderOpenAI, Err: errors.New("eof")}, notify.TitleError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, "question?", func(s *config.Settings) {
				s.ShowNotifications = false
			})
			f.clipboard.text = "untouched"
			f.completer.err = tt.err

			f.svc.handle(context.Background(), hotkey.ActionCommonQuestion)

			titles := f.notifier.titles()
			if len(titles) != 1 || titles[0] != tt.wantTitle {
				t.Errorf("notifications = %v, want [%s]", titles, tt.wantTitle)
			}
			if f.clipboard.text != "untouched" {
				t.Errorf("clipboard changed to %q", f.clipboard.text)
			}
		})
	}
}

func TestHandleMissingAPIKey(t *testing.T) {
	f := newServiceFixture(t, "text", func(s *config.Settings) {
		s.SetAPIKey(llm.ProviderOpenAI, "")
	})
	t.Setenv("OPENAI_API_KEY", "")
	f.svc.newCompleter = llm.NewCompleter

	f.svc.handle(context.Background(), hotkey.ActionCorrection)

	n, ok := f.notifier.find(notify.TitleError)
	if !ok {
		t.Fatalf("notifications = %v", f.notifier.titles())
	}
	if n.message == "" {
		t.Errorf("empty error message")
	}
}

func TestRun(t *testing.T) {
	f := newServiceFixture(t, "hello", func(s *config.Settings) {
		s.Hotkeys.Translation = "Alt+T"
	})
	f.hotkeys.err = &hotkey.RegisterError{Failed: map[hotkey.Action]error{
		hotkey.ActionCorrection: errors.New("taken"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		f.notifier.mu.Lock()
		n := len(f.notifier.sent)
		f.notifier.mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := f.hotkeys.accels[hotkey.ActionTranslation]; got != "Alt+T" {
		t.Errorf("translation accel = %q, want %q", got, "Alt+T")
	}
	if _, ok := f.notifier.find(notify.TitleError); !ok {
		t.Errorf("registration failure not reported: %v", f.notifier.titles())
	}

	f.hotkeys.handler(hotkey.ActionTranslation)
	f.svc.Wait()
	if f.completer.calls != 1 {
		t.Errorf("completer calls = %d, want 1", f.completer.calls)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	if !f.hotkeys.closed {
		t.Error("hotkeys not closed")
	}
}

func TestFormatNames(t *testing.T) {
	if got := FormatNames([]string{"a", "b"}); got != "1. a\n2. b" {
		t.Errorf("FormatNames = %q", got)
	}
	if got := FormatNames(nil); got != "" {
		t.Errorf("FormatNames(nil) = %q", got)
	}
}

func TestProfileFromTone(t *testing.T) {
	cfg := config.Default()
	if p := ProfileFrom(cfg); p.Tone != nil {
		t.Errorf("default tone = %+v, want nil", p.Tone)
	}

	if err := cfg.SelectTonePreset("default-cat"); err != nil {
		t.Fatalf("SelectTonePreset: %v", err)
	}
	p := ProfileFrom(cfg)
	if p.Tone == nil || p.Tone.ID != "default-cat" {
		t.Errorf("tone = %+v, want default-cat", p.Tone)
	}
	if p.NativeLanguage != "ko" || p.TargetLanguage != "en" {
		t.Errorf("languages = %s/%s", p.NativeLanguage, p.TargetLanguage)
	}
}
