package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.aimuz.me/quill/internal/types"
)

const (
	anthropicVersion      = "2023-06-01"
	defaultClaudeMaxToken = 1024
)

// claudeCompleter implements Completer for the Anthropic messages API.
type claudeCompleter struct {
	cfg completerConfig
}

type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
	Usage   *claudeUsage    `json:"usage,omitempty"`
	Error   *claudeError    `json:"error,omitempty"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// buildClaudeRequest hoists system messages into the top-level system field.
func buildClaudeRequest(r Request) claudeRequest {
	var (
		msgs   []claudeMessage
		system []string
	)
	for _, m := range r.Messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		msgs = append(msgs, claudeMessage{Role: m.Role, Content: m.Content})
	}

	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxToken
	}

	return claudeRequest{
		Model:       r.Model,
		Messages:    msgs,
		System:      strings.Join(system, "\n"),
		MaxTokens:   maxTokens,
		Temperature: r.Temperature,
	}
}

func parseClaudeResponse(body []byte) (Response, error) {
	var resp claudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return Response{}, fmt.Errorf("api error: %s - %s", resp.Error.Type, resp.Error.Message)
	}

	var text strings.Builder
	found := false
	for _, c := range resp.Content {
		if c.Type != "" && c.Type != "text" {
			continue
		}
		text.WriteString(c.Text)
		found = true
	}
	if !found {
		return Response{}, errors.New("no content returned")
	}

	var usage types.Usage
	if resp.Usage != nil {
		usage = types.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}
	return Response{Text: text.String(), Usage: usage}, nil
}

func (c *claudeCompleter) Complete(ctx context.Context, r Request) (Response, error) {
	body, err := json.Marshal(buildClaudeRequest(r))
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	header := http.Header{}
	header.Set("x-api-key", c.cfg.apiKey)
	header.Set("anthropic-version", anthropicVersion)

	data, err := c.cfg.post(ctx, c.cfg.baseURL+"/messages", header, body)
	if err != nil {
		return Response{}, err
	}

	resp, err := parseClaudeResponse(data)
	if err != nil {
		return Response{}, &ParseError{Provider: ProviderAnthropic, Err: err}
	}
	return resp, nil
}
