package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"weekend-guide/internal/domain"
)

// DefaultBaseURL is the production OpenAI API endpoint. Overridable for
// compatible gateways and for tests.
const DefaultBaseURL = "https://api.openai.com"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatClient sends composed prompts to the OpenAI chat completions endpoint.
// One attempt per request; the HTTP client timeout bounds the call, and a
// timeout is reported like any other generation failure.
type ChatClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewChatClient constructs a generator for the given endpoint and model.
func NewChatClient(baseURL, apiKey, model string, client *http.Client) *ChatClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ChatClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Client:  client,
	}
}

// Generate sends the prompt pair and returns the assistant message verbatim.
func (c *ChatClient) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	if maxTokens > 0 {
		reqBody.MaxTokens = maxTokens
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("marshal chat request: %w", err)}
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("create chat request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("call chat endpoint: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &domain.GenerationError{Err: fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, string(body))}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("decode chat response: %w", err)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.GenerationError{Err: fmt.Errorf("chat response contained no choices")}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Version returns the wrapped model name.
func (c *ChatClient) Version() string {
	return c.Model
}

var _ domain.TextGenerator = (*ChatClient)(nil)
