package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

var (
	// ErrEmptyCompletion is returned when the provider answers with
	// zero choices. It is distinct from a legitimately empty reply,
	// which would otherwise be indistinguishable once stored.
	ErrEmptyCompletion = errors.New("completion contained no choices")
	// ErrProvider wraps any transport or protocol failure of the
	// completion call.
	ErrProvider = errors.New("completion provider failure")
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type Choice struct {
	Message ChatMessage `json:"message"`
}

type CompletionResponse struct {
	Choices []Choice `json:"choices"`
}

// CompletionClient is the narrow contract against the external
// completion provider: one synchronous call, no internal retries.
// Deadlines are the caller's responsibility via ctx.
type CompletionClient interface {
	CreateCompletion(ctx context.Context, messages []ChatMessage) (CompletionResponse, error)
}

// HTTPClient talks to an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	log     *log.Logger
}

func NewHTTPClient(logger *log.Logger, baseURL, apiKey, model string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     logger,
	}
}

func (c *HTTPClient) CreateCompletion(ctx context.Context, messages []ChatMessage) (CompletionResponse, error) {
	body, err := json.Marshal(CompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: marshal request: %v", ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: create request: %v", ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: read response: %v", ErrProvider, err)
	}

	if resp.StatusCode >= 400 {
		c.log.Printf("completion provider returned %d: %s", resp.StatusCode, respBody)
		return CompletionResponse{}, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var cr CompletionResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: unmarshal response: %v", ErrProvider, err)
	}

	return cr, nil
}

// ExtractReply returns the content of the response's first choice.
func ExtractReply(resp CompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}
