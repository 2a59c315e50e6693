// Package types provides shared type definitions for the application.
package types

import "time"

// Operation identifies one of the text operations the assistant performs.
type Operation string

const (
	OpCorrection     Operation = "correction"
	OpTranslation    Operation = "translation"
	OpVariableNames  Operation = "variable_names"
	OpFunctionNames  Operation = "function_names"
	OpCommonQuestion Operation = "common_question"
)

// Usage represents token usage statistics from LLM API calls.
type Usage struct {
	PromptTokens     int  `json:"promptTokens"`
	CompletionTokens int  `json:"completionTokens"`
	TotalTokens      int  `json:"totalTokens"`
	CacheHit         bool `json:"cacheHit"`
}

// CorrectionResult is the outcome of a spelling and grammar correction.
type CorrectionResult struct {
	OriginalText    string `json:"originalText"`
	CorrectedText   string `json:"correctedText"`
	AppliedToneName string `json:"appliedToneName,omitempty"`
	Usage           Usage  `json:"usage"`
}

// HasChanges reports whether the correction differs from the input.
func (r CorrectionResult) HasChanges() bool {
	return r.OriginalText != r.CorrectedText
}

// TranslationResult is the outcome of a translation.
type TranslationResult struct {
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	Usage          Usage  `json:"usage"`
}

// VariableNameSuggestionResult holds identifier suggestions for a description.
type VariableNameSuggestionResult struct {
	OriginalText   string   `json:"originalText"`
	SuggestedNames []string `json:"suggestedNames"`
	Usage          Usage    `json:"usage"`
}

// CommonQuestionResult is a free-form answer to a question.
type CommonQuestionResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Usage    Usage  `json:"usage"`
}

// TonePreset describes a target writing tone for corrections.
type TonePreset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
}

// UsageRecord is one persisted API call.
type UsageRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	OperationType    Operation `json:"operationType"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"promptTokens"`
	CompletionTokens int       `json:"completionTokens"`
	TotalTokens      int       `json:"totalTokens"`
	Cost             float64   `json:"cost"`
}

// UsageStatistics aggregates usage records over a time window.
type UsageStatistics struct {
	Operations            map[Operation]int `json:"operations"`
	TotalRequests         int               `json:"totalRequests"`
	TotalPromptTokens     int               `json:"totalPromptTokens"`
	TotalCompletionTokens int               `json:"totalCompletionTokens"`
	TotalTokens           int               `json:"totalTokens"`
	TotalCost             float64           `json:"totalCost"`
}
