// pkg/ai/gemini_client.go

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type gemini struct {
	endpoint string
	key      string
	model    string
	httpc    *http.Client
}

// NewGemini talks to the Generative Language REST API
// (POST {endpoint}/v1beta/models/{model}:generateContent).
func NewGemini(endpoint, key, model string) Client {
	return &gemini{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		model:    model,
		httpc:    &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *gemini) Provider() string { return "gemini" }
func (c *gemini) Model() string    { return c.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

var blockedFinishReasons = map[string]bool{
	"SAFETY":             true,
	"BLOCKLIST":          true,
	"PROHIBITED_CONTENT": true,
	"SPII":               true,
}

func (c *gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"contents": []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	u := c.endpoint + "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Provider: "gemini", StatusCode: resp.StatusCode}
		var ge geminiError
		if json.Unmarshal(raw, &ge) == nil {
			apiErr.Message = ge.Error.Message
		}
		return "", apiErr
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if reason := out.PromptFeedback.BlockReason; reason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, reason)
	}
	if len(out.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	cand := out.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		if blockedFinishReasons[cand.FinishReason] {
			return "", fmt.Errorf("%w: %s", ErrBlocked, cand.FinishReason)
		}
		return "", ErrEmptyResponse
	}
	return text, nil
}
