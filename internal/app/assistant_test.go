package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.aimuz.me/quill/cache"
	"go.aimuz.me/quill/internal/types"
	"go.aimuz.me/quill/llm"
	"go.aimuz.me/quill/usage"
)

// mockCompleter implements llm.Completer for testing.
type mockCompleter struct {
	response string
	usage    types.Usage
	err      error

	calls int
	last  llm.Request
}

func (m *mockCompleter) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return llm.Response{}, m.err
	}
	return llm.Response{Text: m.response, Usage: m.usage}, nil
}

func newTestAssistant(m *mockCompleter, profile Profile) *Assistant {
	if profile.Provider == "" {
		profile.Provider = llm.ProviderOpenAI
	}
	if profile.Model == "" {
		profile.Model = "gpt-4o-mini"
	}
	a := NewAssistant(m, profile, nil, nil)
	a.detect = func(string) string { return "en" }
	return a
}

func TestBlankInputSkipsRequest(t *testing.T) {
	m := &mockCompleter{response: "unused"}
	a := newTestAssistant(m, Profile{})
	ctx := context.Background()

	corr, err := a.CorrectSpelling(ctx, "   ")
	if err != nil || corr.CorrectedText != "   " {
		t.Errorf("CorrectSpelling = %+v, %v", corr, err)
	}
	tr, err := a.Translate(ctx, "")
	if err != nil || tr.TranslatedText != "" {
		t.Errorf("Translate = %+v, %v", tr, err)
	}
	names, err := a.SuggestVariableNames(ctx, "\n\t")
	if err != nil || len(names.SuggestedNames) != 0 || names.SuggestedNames == nil {
		t.Errorf("SuggestVariableNames = %+v, %v", names, err)
	}
	ans, err := a.AnswerQuestion(ctx, " ")
	if err != nil || ans.Answer != "" {
		t.Errorf("AnswerQuestion = %+v, %v", ans, err)
	}

	if m.calls != 0 {
		t.Errorf("completer called %d times, want 0", m.calls)
	}
}

func TestCorrectSpelling(t *testing.T) {
	tone := &types.TonePreset{ID: "default-cat", Name: "Cat", Description: "Answer like a cat."}

	tests := []struct {
		name         string
		tone         *types.TonePreset
		response     string
		wantText     string
		wantTone     string
		wantContains string
		wantChanges  bool
	}{
		{
			name:         "plain",
			response:     "  I went to school.\n",
			wantText:     "I went to school.",
			wantContains: "Correct the spelling and grammar of the following text",
			wantChanges:  true,
		},
		{
			name:         "with tone",
			tone:         tone,
			response:     "I went to school, meow.",
			wantText:     "I went to school, meow.",
			wantTone:     "Cat",
			wantContains: "Tone: Cat\nDescription: Answer like a cat.",
			wantChanges:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockCompleter{response: tt.response}
			a := newTestAssistant(m, Profile{Tone: tt.tone})

			res, err := a.CorrectSpelling(context.Background(), "I goed to school.")
			if err != nil {
				t.Fatalf("CorrectSpelling: %v", err)
			}
			if res.CorrectedText != tt.wantText {
				t.Errorf("CorrectedText = %q, want %q", res.CorrectedText, tt.wantText)
			}
			if res.AppliedToneName != tt.wantTone {
				t.Errorf("AppliedToneName = %q, want %q", res.AppliedToneName, tt.wantTone)
			}
			if res.HasChanges() != tt.wantChanges {
				t.Errorf("HasChanges = %v, want %v", res.HasChanges(), tt.wantChanges)
			}

			if m.last.Temperature != 0.3 || m.last.MaxTokens != 2000 {
				t.Errorf("sampling = %v/%d, want 0.3/2000", m.last.Temperature, m.last.MaxTokens)
			}
			if len(m.last.Messages) != 2 || m.last.Messages[0].Role != "system" || m.last.Messages[1].Role != "user" {
				t.Fatalf("messages = %+v", m.last.Messages)
			}
			if !strings.Contains(m.last.Messages[1].Content, tt.wantContains) {
				t.Errorf("user message does not contain %q, got %q", tt.wantContains, m.last.Messages[1].Content)
			}
			if !strings.Contains(m.last.Messages[0].Content, "Korean") {
				t.Errorf("system prompt does not name the native language: %q", m.last.Messages[0].Content)
			}
		})
	}
}

func TestTranslateDirection(t *testing.T) {
	tests := []struct {
		name       string
		detected   string
		wantSource string
		wantTarget string
	}{
		{"native to target", "ko", "Korean", "English"},
		{"foreign to native", "ja", "Japanese", "Korean"},
		{"target to native", "en", "English", "Korean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockCompleter{response: "translated"}
			a := newTestAssistant(m, Profile{NativeLanguage: "ko", TargetLanguage: "en"})
			a.detect = func(string) string { return tt.detected }

			res, err := a.Translate(context.Background(), "text")
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if res.SourceLanguage != tt.wantSource || res.TargetLanguage != tt.wantTarget {
				t.Errorf("direction = %s -> %s, want %s -> %s",
					res.SourceLanguage, res.TargetLanguage, tt.wantSource, tt.wantTarget)
			}
			want := "Translate the following " + tt.wantSource + " text to " + tt.wantTarget
			if !strings.Contains(m.last.Messages[1].Content, want) {
				t.Errorf("user message = %q, want it to contain %q", m.last.Messages[1].Content, want)
			}
		})
	}
}

func TestSuggestNames(t *testing.T) {
	m := &mockCompleter{response: "1. userCount\n\n- `totalUsers`\n  numberOfUsers  \nextraName\n"}
	a := newTestAssistant(m, Profile{})

	res, err := a.SuggestVariableNames(context.Background(), "number of users")
	if err != nil {
		t.Fatalf("SuggestVariableNames: %v", err)
	}
	want := []string{"userCount", "totalUsers", "numberOfUsers"}
	if strings.Join(res.SuggestedNames, ",") != strings.Join(want, ",") {
		t.Errorf("SuggestedNames = %q, want %q", res.SuggestedNames, want)
	}
	if m.last.Temperature != 0.5 || m.last.MaxTokens != 200 {
		t.Errorf("sampling = %v/%d, want 0.5/200", m.last.Temperature, m.last.MaxTokens)
	}
	if !strings.Contains(m.last.Messages[1].Content, "camelCase") {
		t.Errorf("variable prompt should ask for camelCase: %q", m.last.Messages[1].Content)
	}

	if _, err := a.SuggestFunctionNames(context.Background(), "load users"); err != nil {
		t.Fatalf("SuggestFunctionNames: %v", err)
	}
	if !strings.Contains(m.last.Messages[1].Content, "PascalCase") {
		t.Errorf("function prompt should ask for PascalCase: %q", m.last.Messages[1].Content)
	}
}

func TestAnswerQuestion(t *testing.T) {
	m := &mockCompleter{response: "\nA goroutine is a lightweight thread.\n"}
	a := newTestAssistant(m, Profile{})

	res, err := a.AnswerQuestion(context.Background(), "What is a goroutine?")
	if err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
	if res.Answer != "A goroutine is a lightweight thread." {
		t.Errorf("Answer = %q", res.Answer)
	}
	if m.last.Temperature != 0.7 || m.last.MaxTokens != 1000 {
		t.Errorf("sampling = %v/%d, want 0.7/1000", m.last.Temperature, m.last.MaxTokens)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantErr     bool
		wantTimeout bool
	}{
		{"timeout", llm.ErrTimeout, true, true},
		{"provider", &llm.ProviderError{Provider: llm.ProviderOpenAI, StatusCode: 401, Body: "bad key"}, true, false},
		{"parse degrades", &llm.ParseError{Provider: llm.ProviderGemini, Err: errors.New("eof")}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssistant(&mockCompleter{err: tt.err}, Profile{})

			res, err := a.CorrectSpelling(context.Background(), "text")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if llm.IsTimeout(err) != tt.wantTimeout {
				t.Errorf("IsTimeout = %v, want %v", llm.IsTimeout(err), tt.wantTimeout)
			}
			if !tt.wantErr && res.CorrectedText != "" {
				t.Errorf("CorrectedText = %q, want empty", res.CorrectedText)
			}
		})
	}
}

func TestCacheAndUsage(t *testing.T) {
	c, err := cache.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory: %v", err)
	}
	defer c.Close()

	tracker := usage.NewTracker(filepath.Join(t.TempDir(), usage.FileName))
	m := &mockCompleter{
		response: "fixed",
		usage:    types.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	a := NewAssistant(m, Profile{Provider: llm.ProviderOpenAI, Model: "gpt-4o-mini"}, c, tracker)

	first, err := a.CorrectSpelling(context.Background(), "fixd")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := a.CorrectSpelling(context.Background(), "fixd")
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if m.calls != 1 {
		t.Errorf("completer called %d times, want 1", m.calls)
	}
	if first.Usage.CacheHit || !second.Usage.CacheHit {
		t.Errorf("CacheHit = %v/%v, want false/true", first.Usage.CacheHit, second.Usage.CacheHit)
	}
	if second.CorrectedText != "fixed" || second.Usage.TotalTokens != 15 {
		t.Errorf("cached result = %+v", second)
	}

	records, err := tracker.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d usage records, want 1", len(records))
	}
	if records[0].OperationType != types.OpCorrection || records[0].TotalTokens != 15 {
		t.Errorf("record = %+v", records[0])
	}
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a\nb\nc\nd", []string{"a", "b", "c"}},
		{"\r\n  a  \r\n", []string{"a"}},
		{"2) first\n* second", []string{"first", "second"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got := parseSuggestions(tt.in, 3)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("parseSuggestions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
