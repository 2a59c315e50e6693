package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.aimuz.me/quill/cache"
	"go.aimuz.me/quill/internal/types"
	"go.aimuz.me/quill/langdetect"
	"go.aimuz.me/quill/llm"
	"go.aimuz.me/quill/usage"
)

// maxSuggestions is how many identifier suggestions are kept.
const maxSuggestions = 3

// Profile holds the settings an Assistant needs per request.
type Profile struct {
	Provider       llm.Provider
	Model          string
	NativeLanguage string
	TargetLanguage string
	// Tone is nil for plain correction.
	Tone *types.TonePreset
}

// Assistant runs the text operations against a completer, with optional
// caching and usage accounting.
// Zero value is not useful; create via NewAssistant.
type Assistant struct {
	completer llm.Completer
	profile   Profile
	cache     *cache.Cache
	usage     *usage.Tracker
	detect    func(string) string
}

// NewAssistant creates an Assistant. c and tracker may be nil.
func NewAssistant(completer llm.Completer, profile Profile, c *cache.Cache, tracker *usage.Tracker) *Assistant {
	if profile.NativeLanguage == "" {
		profile.NativeLanguage = "ko"
	}
	if profile.TargetLanguage == "" {
		profile.TargetLanguage = "en"
	}
	return &Assistant{
		completer: completer,
		profile:   profile,
		cache:     c,
		usage:     tracker,
		detect:    langdetect.Detect,
	}
}

// CorrectSpelling fixes spelling and grammar, converting to the profile's tone
// when one is set.
func (a *Assistant) CorrectSpelling(ctx context.Context, text string) (types.CorrectionResult, error) {
	if strings.TrimSpace(text) == "" {
		return types.CorrectionResult{OriginalText: text, CorrectedText: text}, nil
	}

	tone := a.profile.Tone
	p := correctionPrompt(text, langdetect.Name(a.profile.NativeLanguage), tone)
	out, u, err := a.complete(ctx, p)
	if err != nil {
		return types.CorrectionResult{}, fmt.Errorf("correct spelling: %w", err)
	}

	res := types.CorrectionResult{OriginalText: text, CorrectedText: out, Usage: u}
	if tone != nil {
		res.AppliedToneName = tone.Name
	}
	return res, nil
}

// Translate translates between the native and target languages, choosing
// the direction from the detected source language.
func (a *Assistant) Translate(ctx context.Context, text string) (types.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return types.TranslationResult{OriginalText: text, TranslatedText: text}, nil
	}

	source := a.detect(text)
	target := langdetect.Target(source, a.profile.NativeLanguage, a.profile.TargetLanguage)
	sourceName, targetName := langdetect.Name(source), langdetect.Name(target)

	out, u, err := a.complete(ctx, translationPrompt(text, sourceName, targetName))
	if err != nil {
		return types.TranslationResult{}, fmt.Errorf("translate: %w", err)
	}
	return types.TranslationResult{
		OriginalText:   text,
		TranslatedText: out,
		SourceLanguage: sourceName,
		TargetLanguage: targetName,
		Usage:          u,
	}, nil
}

// SuggestVariableNames proposes up to three camelCase identifiers.
func (a *Assistant) SuggestVariableNames(ctx context.Context, text string) (types.VariableNameSuggestionResult, error) {
	return a.suggestNames(ctx, text, variableNamePrompt(text))
}

// SuggestFunctionNames proposes up to three PascalCase function names.
func (a *Assistant) SuggestFunctionNames(ctx context.Context, text string) (types.VariableNameSuggestionResult, error) {
	return a.suggestNames(ctx, text, functionNamePrompt(text))
}

func (a *Assistant) suggestNames(ctx context.Context, text string, p prompt) (types.VariableNameSuggestionResult, error) {
	if strings.TrimSpace(text) == "" {
		return types.VariableNameSuggestionResult{OriginalText: text, SuggestedNames: []string{}}, nil
	}

	out, u, err := a.complete(ctx, p)
	if err != nil {
		return types.VariableNameSuggestionResult{}, fmt.Errorf("suggest names: %w", err)
	}
	return types.VariableNameSuggestionResult{
		OriginalText:   text,
		SuggestedNames: parseSuggestions(out, maxSuggestions),
		Usage:          u,
	}, nil
}

// AnswerQuestion answers a free-form question in the native language.
func (a *Assistant) AnswerQuestion(ctx context.Context, question string) (types.CommonQuestionResult, error) {
	if strings.TrimSpace(question) == "" {
		return types.CommonQuestionResult{Question: question}, nil
	}

	out, u, err := a.complete(ctx, questionPrompt(question, langdetect.Name(a.profile.NativeLanguage)))
	if err != nil {
		return types.CommonQuestionResult{}, fmt.Errorf("answer question: %w", err)
	}
	return types.CommonQuestionResult{Question: question, Answer: out, Usage: u}, nil
}

// complete sends one request. A response that cannot be parsed degrades to
// empty text; timeouts and provider errors are returned.
func (a *Assistant) complete(ctx context.Context, p prompt) (string, types.Usage, error) {
	key := a.cacheKey(p)
	if text, u, ok := a.getCached(key); ok {
		return text, u, nil
	}

	resp, err := a.completer.Complete(ctx, llm.Request{
		Model:       a.profile.Model,
		Messages:    p.messages(),
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		var pe *llm.ParseError
		if errors.As(err, &pe) {
			slog.Warn("unreadable response, returning empty result", "op", p.op, "error", err)
			return "", types.Usage{}, nil
		}
		return "", types.Usage{}, err
	}

	a.record(p.op, resp.Usage)

	text := strings.TrimSpace(resp.Text)
	if text != "" {
		a.setCache(key, text, resp.Usage)
	}
	return text, resp.Usage, nil
}

func (a *Assistant) record(op types.Operation, u types.Usage) {
	if a.usage == nil {
		return
	}
	if err := a.usage.Record(op, a.profile.Model, u.PromptTokens, u.CompletionTokens); err != nil {
		slog.Warn("record usage", "op", op, "error", err)
	}
}

func (a *Assistant) cacheKey(p prompt) string {
	return cache.GenerateKey(string(a.profile.Provider), a.profile.Model, string(p.op), p.system, p.user)
}

func (a *Assistant) getCached(key string) (string, types.Usage, bool) {
	if a.cache == nil {
		return "", types.Usage{}, false
	}

	entry, found := a.cache.Get(key)
	if !found {
		return "", types.Usage{}, false
	}

	return entry.Text, types.Usage{
		PromptTokens:     entry.Usage.PromptTokens,
		CompletionTokens: entry.Usage.CompletionTokens,
		TotalTokens:      entry.Usage.TotalTokens,
		CacheHit:         true,
	}, true
}

func (a *Assistant) setCache(key, text string, u types.Usage) {
	if a.cache == nil {
		return
	}

	entry := &cache.Entry{
		Text: text,
		Usage: cache.Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		},
		CreatedAt: time.Now(),
	}

	// Ignore error - caching is best effort
	_ = a.cache.Set(key, entry, cache.DefaultTTL)
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// parseSuggestions keeps the first n non-blank lines, stripping list markers
// and code quotes a model may add despite instructions.
func parseSuggestions(text string, n int) []string {
	names := []string{}
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), "`")
		if line == "" {
			continue
		}
		names = append(names, line)
		if len(names) == n {
			break
		}
	}
	return names
}
