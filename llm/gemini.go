package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.aimuz.me/quill/internal/types"
)

// geminiCompleter implements Completer for the generateContent API.
type geminiCompleter struct {
	cfg completerConfig
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	GenerationConfig  geminiConfig      `json:"generationConfig"`
	SystemInstruction *geminiSystemInst `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiSystemInst struct {
	Parts []geminiPart `json:"parts"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata,omitempty"`
	Error         *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// buildGeminiRequest renames assistant to model, nests content under parts
// and moves system messages into systemInstruction.
func buildGeminiRequest(r Request) geminiRequest {
	var (
		contents []geminiContent
		system   []string
	)

	for _, m := range r.Messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}

		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	req := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiConfig{
			Temperature:     r.Temperature,
			MaxOutputTokens: r.MaxTokens,
		},
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiSystemInst{
			Parts: []geminiPart{{Text: strings.Join(system, "\n")}},
		}
	}
	return req
}

func parseGeminiResponse(body []byte) (Response, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return Response{}, fmt.Errorf("api error: %d - %s", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return Response{}, errors.New("no candidates returned")
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return Response{Text: text.String(), Usage: geminiToUsage(resp.UsageMetadata)}, nil
}

// geminiToUsage converts Gemini usage metadata to types.Usage.
func geminiToUsage(u *geminiUsage) types.Usage {
	if u == nil {
		return types.Usage{}
	}
	total := u.TotalTokenCount
	if total == 0 {
		total = u.PromptTokenCount + u.CandidatesTokenCount
	}
	return types.Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      total,
	}
}

func (c *geminiCompleter) endpoint(model string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.cfg.baseURL, url.PathEscape(model), url.QueryEscape(c.cfg.apiKey))
}

func (c *geminiCompleter) Complete(ctx context.Context, r Request) (Response, error) {
	body, err := json.Marshal(buildGeminiRequest(r))
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	data, err := c.cfg.post(ctx, c.endpoint(r.Model), nil, body)
	if err != nil {
		return Response{}, err
	}

	resp, err := parseGeminiResponse(data)
	if err != nil {
		return Response{}, &ParseError{Provider: ProviderGemini, Err: err}
	}
	return resp, nil
}
