package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Requester performs one generation request and returns the itinerary text.
// The returned error's message is what the user will see on the Plan.
type Requester interface {
	Request(ctx context.Context, req Request) (string, error)
}

type RequesterFunc func(ctx context.Context, req Request) (string, error)

func (f RequesterFunc) Request(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

const fallbackError = "Something went wrong"

// HTTPRequester calls a turizm server's POST /api/generate.
type HTTPRequester struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPRequester(baseURL string) *HTTPRequester {
	return &HTTPRequester{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

type generateResponse struct {
	Itinerary string `json:"itinerary"`
	Error     string `json:"error"`
}

func (r *HTTPRequester) Request(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out generateResponse
	decodeErr := json.Unmarshal(raw, &out)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	switch {
	case out.Error != "":
		return "", errors.New(out.Error)
	case !ok:
		return "", errors.New(fallbackError)
	case decodeErr != nil:
		return "", fmt.Errorf("decode response: %w", decodeErr)
	case out.Itinerary == "":
		return "", errors.New(fallbackError)
	}
	return out.Itinerary, nil
}
