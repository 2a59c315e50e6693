// Package app wires hotkeys, selection capture and the AI assistant into the
// background service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.aimuz.me/quill/cache"
	"go.aimuz.me/quill/clipboard"
	"go.aimuz.me/quill/config"
	"go.aimuz.me/quill/hotkey"
	"go.aimuz.me/quill/keys"
	"go.aimuz.me/quill/llm"
	"go.aimuz.me/quill/notify"
	"go.aimuz.me/quill/selection"
	"go.aimuz.me/quill/usage"
)

const timeoutMessage = "The AI service did not respond in time. Please check your network connection and try again."

// SelectionReader returns the text selected in the foreground application.
type SelectionReader interface {
	GetSelectedText(ctx context.Context) string
}

// HotkeyRegistrar registers global accelerators.
type HotkeyRegistrar interface {
	Register(accels map[hotkey.Action]string, h hotkey.Handler) error
	Close() error
}

// CompleterFactory builds a completer for a provider.
type CompleterFactory func(llm.Provider, llm.Config) (llm.Completer, error)

// Options configures a Service. Store, Selection, Clipboard and Keys are
// required.
type Options struct {
	Store     *config.Store
	Selection SelectionReader
	Clipboard clipboard.Clipboard
	Keys      keys.Injector
	Hotkeys   HotkeyRegistrar
	Notifier  notify.Notifier
	Cache     *cache.Cache
	Usage     *usage.Tracker

	// NewCompleter defaults to llm.NewCompleter.
	NewCompleter CompleterFactory
}

// Service reacts to hotkeys: it captures the selection, runs the matching
// operation and delivers the result. Each press is handled independently.
type Service struct {
	store        *config.Store
	selection    SelectionReader
	clipboard    clipboard.Clipboard
	keys         keys.Injector
	hotkeys      HotkeyRegistrar
	notifier     notify.Notifier
	cache        *cache.Cache
	usage        *usage.Tracker
	newCompleter CompleterFactory

	wg sync.WaitGroup
}

// New creates a Service.
func New(opts Options) *Service {
	s := &Service{
		store:        opts.Store,
		selection:    opts.Selection,
		clipboard:    opts.Clipboard,
		keys:         opts.Keys,
		hotkeys:      opts.Hotkeys,
		notifier:     opts.Notifier,
		cache:        opts.Cache,
		usage:        opts.Usage,
		newCompleter: opts.NewCompleter,
	}
	if s.notifier == nil {
		s.notifier = notify.Desktop{}
	}
	if s.newCompleter == nil {
		s.newCompleter = llm.NewCompleter
	}
	return s
}

// Run registers the configured hotkeys and blocks until ctx is done. Hotkeys
// the OS refuses are reported and skipped.
func (s *Service) Run(ctx context.Context) error {
	if s.hotkeys == nil {
		return fmt.Errorf("no hotkey registrar")
	}

	cfg := s.settings()
	accels := map[hotkey.Action]string{
		hotkey.ActionCommonQuestion: cfg.Hotkeys.CommonQuestion,
		hotkey.ActionCorrection:     cfg.Hotkeys.Correction,
		hotkey.ActionTranslation:    cfg.Hotkeys.Translation,
		hotkey.ActionVariableNames:  cfg.Hotkeys.VariableNames,
	}

	err := s.hotkeys.Register(accels, func(a hotkey.Action) { s.Handle(ctx, a) })
	var regErr *hotkey.RegisterError
	switch {
	case errors.As(err, &regErr):
		slog.Warn("some hotkeys unavailable", "error", err)
		s.notifier.Notify(notify.TitleError, regErr.Error())
	case err != nil:
		return fmt.Errorf("register hotkeys: %w", err)
	default:
		s.notify(cfg, notify.TitleStarted, startedMessage(cfg))
	}

	if cfg.APIKeyFor(cfg.Provider) == "" {
		s.notifier.Notify(notify.TitleSetupRequired,
			fmt.Sprintf("No API key set for %s. Run 'quill config set-key'.", cfg.Provider.DisplayName()))
	}

	slog.Info("service running", "provider", cfg.Provider, "model", cfg.Model)
	<-ctx.Done()

	if err := s.hotkeys.Close(); err != nil {
		slog.Error("close hotkeys", "error", err)
	}
	s.wg.Wait()
	return nil
}

// Handle processes one hotkey press in the background.
func (s *Service) Handle(ctx context.Context, action hotkey.Action) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.handle(ctx, action)
	}()
}

// Wait blocks until every in-flight request has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) handle(ctx context.Context, action hotkey.Action) {
	log := slog.With("action", action)
	cfg := s.settings()

	text := s.selection.GetSelectedText(ctx)
	if strings.TrimSpace(text) == "" {
		s.notify(cfg, notify.TitleNoSelection, noSelectionMessage(action))
		return
	}

	asst, err := s.Assistant(cfg)
	if err != nil {
		log.Error("create assistant", "error", err)
		s.notifier.Notify(notify.TitleError, err.Error())
		return
	}

	if cfg.ShowProgressNotifications {
		s.notify(cfg, notify.TitleProcessing, progressMessage(action))
	}

	out, err := run(ctx, asst, action, text)
	if err != nil {
		log.Error("request failed", "error", err)
		if llm.IsTimeout(err) {
			s.notifier.Notify(notify.TitleTimeout, timeoutMessage)
			return
		}
		s.notifier.Notify(notify.TitleError, err.Error())
		return
	}

	if out.text == "" {
		log.Warn("empty response")
		s.notifier.Notify(notify.TitleError, "The AI service returned an empty response.")
		return
	}

	if err := s.deliver(cfg, out.text); err != nil {
		log.Error("deliver result", "error", err)
		s.notifier.Notify(notify.TitleError, err.Error())
		return
	}

	log.Info("request done", "cached", out.cached)
	if cfg.ShowProgressNotifications {
		s.notify(cfg, out.title, out.message)
	}
}

// Assistant builds an Assistant for the current settings.
func (s *Service) Assistant(cfg *config.Settings) (*Assistant, error) {
	completer, err := s.newCompleter(cfg.Provider, cfg.CompleterConfig())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Provider.DisplayName(), err)
	}

	var c *cache.Cache
	if cfg.CacheEnabled {
		c = s.cache
	}

	return NewAssistant(completer, ProfileFrom(cfg), c, s.usage), nil
}

// ProfileFrom extracts the per-request profile from settings.
// The sentinel "no tone" preset maps to a nil Tone.
func ProfileFrom(cfg *config.Settings) Profile {
	p := Profile{
		Provider:       cfg.Provider,
		Model:          cfg.Model,
		NativeLanguage: cfg.NativeLanguage,
		TargetLanguage: cfg.TargetLanguage,
	}
	if tone := cfg.SelectedTonePreset(); tone != nil && tone.ID != config.NoToneID {
		p.Tone = tone
	}
	return p
}

func (s *Service) deliver(cfg *config.Settings, text string) error {
	if cfg.ResultAction == config.ResultReplace {
		return selection.Replace(s.clipboard, s.keys, text)
	}
	return selection.Copy(s.clipboard, text)
}

// notify shows a non-error notification unless notifications are off.
func (s *Service) notify(cfg *config.Settings, title, message string) {
	if !cfg.ShowNotifications {
		return
	}
	s.notifier.Notify(title, message)
}

// settings re-reads the store so edits made while running apply to the next
// request.
func (s *Service) settings() *config.Settings {
	cfg, err := s.store.Load()
	if err != nil {
		slog.Error("load settings", "error", err)
	}
	return cfg
}

// outcome is what a finished operation hands back to the user.
type outcome struct {
	text    string
	title   string
	message string
	cached  bool
}

func run(ctx context.Context, a *Assistant, action hotkey.Action, text string) (outcome, error) {
	switch action {
	case hotkey.ActionCorrection:
		res, err := a.CorrectSpelling(ctx, text)
		if err != nil {
			return outcome{}, err
		}
		msg := res.CorrectedText
		if res.AppliedToneName != "" {
			msg = fmt.Sprintf("[%s] %s", res.AppliedToneName, msg)
		}
		return outcome{text: res.CorrectedText, title: "Correction complete", message: msg, cached: res.Usage.CacheHit}, nil

	case hotkey.ActionTranslation:
		res, err := a.Translate(ctx, text)
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			text:    res.TranslatedText,
			title:   fmt.Sprintf("Translation complete (%s → %s)", res.SourceLanguage, res.TargetLanguage),
			message: res.TranslatedText,
			cached:  res.Usage.CacheHit,
		}, nil

	case hotkey.ActionVariableNames:
		res, err := a.SuggestVariableNames(ctx, text)
		if err != nil {
			return outcome{}, err
		}
		if len(res.SuggestedNames) == 0 {
			return outcome{}, nil
		}
		return outcome{
			text:    res.SuggestedNames[0],
			title:   "Variable names",
			message: FormatNames(res.SuggestedNames),
			cached:  res.Usage.CacheHit,
		}, nil

	case hotkey.ActionCommonQuestion:
		res, err := a.AnswerQuestion(ctx, text)
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: res.Answer, title: "Answer ready", message: res.Answer, cached: res.Usage.CacheHit}, nil
	}
	return outcome{}, fmt.Errorf("unknown action %d", action)
}

// FormatNames renders suggestions as a numbered list.
func FormatNames(names []string) string {
	var b strings.Builder
	for i, n := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, n)
	}
	return b.String()
}

func noSelectionMessage(a hotkey.Action) string {
	switch a {
	case hotkey.ActionTranslation:
		return "Please select some text to translate."
	case hotkey.ActionCommonQuestion:
		return "Please select some text as a question."
	case hotkey.ActionVariableNames:
		return "Please select some text to suggest variable names."
	}
	return "Please select some text to correct."
}

func progressMessage(a hotkey.Action) string {
	switch a {
	case hotkey.ActionTranslation:
		return "AI is translating your text. Please wait..."
	case hotkey.ActionCommonQuestion:
		return "AI is answering your question. Please wait..."
	case hotkey.ActionVariableNames:
		return "AI is suggesting variable names. Please wait..."
	}
	return "AI is correcting your text. Please wait..."
}

func startedMessage(cfg *config.Settings) string {
	return fmt.Sprintf("Common question: %s\nCorrection: %s\nTranslation: %s\nVariable names: %s",
		cfg.Hotkeys.CommonQuestion, cfg.Hotkeys.Correction, cfg.Hotkeys.Translation, cfg.Hotkeys.VariableNames)
}
