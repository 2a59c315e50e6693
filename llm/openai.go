package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"

	"go.aimuz.me/quill/internal/types"
)

// openaiCompleter implements Completer for the chat completions API.
type openaiCompleter struct {
	cfg completerConfig
}

type openaiRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// buildOpenAIRequest passes the request through unchanged.
func buildOpenAIRequest(r Request) openaiRequest {
	return openaiRequest{
		Model:       r.Model,
		Messages:    r.Messages,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
}

func parseOpenAIResponse(body []byte) (Response, error) {
	var completion openai.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return Response{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, errors.New("no choices")
	}

	u := completion.Usage
	return Response{
		Text: completion.Choices[0].Message.Content,
		Usage: types.Usage{
			PromptTokens:     int(u.PromptTokens),
			CompletionTokens: int(u.CompletionTokens),
			TotalTokens:      int(u.PromptTokens + u.CompletionTokens),
		},
	}, nil
}

func (c *openaiCompleter) Complete(ctx context.Context, r Request) (Response, error) {
	body, err := json.Marshal(buildOpenAIRequest(r))
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.apiKey)

	data, err := c.cfg.post(ctx, c.cfg.baseURL+"/chat/completions", header, body)
	if err != nil {
		return Response{}, err
	}

	resp, err := parseOpenAIResponse(data)
	if err != nil {
		return Response{}, &ParseError{Provider: ProviderOpenAI, Err: err}
	}
	return resp, nil
}
