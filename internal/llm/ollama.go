package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultOllamaURL is where a local Ollama server listens by default.
const DefaultOllamaURL = "http://localhost:11434"

// ollamaClient implements the Client interface for the Ollama chat API.
type ollamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	options    map[string]any
}

// newOllamaClient creates a new Ollama API client. No API key is needed.
func newOllamaClient(cfg Config) (Client, error) {
	model := cfg.Model
	if model == "" {
		model = "llama2"
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	options := map[string]any{}
	if cfg.Temperature != 0 {
		options["temperature"] = cfg.Temperature
	}
	if cfg.MaxTokens != 0 {
		options["num_predict"] = cfg.MaxTokens
	}

	return &ollamaClient{
		baseURL:    baseURL,
		model:      model,
		options:    options,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// ollamaRequest is the body of POST /api/chat.
type ollamaRequest struct {
	Options  map[string]any `json:"options,omitempty"`
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
}

// ollamaResponse represents a non-streamed Ollama chat response.
type ollamaResponse struct {
	Message   *Message `json:"message"`
	Model     string   `json:"model"`
	CreatedAt string   `json:"created_at"`
	Error     string   `json:"error"`
	Done      bool     `json:"done"`
}

// Chat sends the messages to Ollama and returns the reply.
func (c *ollamaClient) Chat(ctx context.Context, messages []Message) (ChatResponse, error) {
	if len(messages) == 0 {
		return ChatResponse{}, ErrNoMessages
	}

	requestBody := ollamaRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}
	if len(c.options) > 0 {
		requestBody.Options = c.options
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return ChatResponse{}, statusError("ollama", resp.StatusCode, body)
	}

	var response ollamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ChatResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Error != "" {
		return ChatResponse{}, fmt.Errorf("ollama API error: %s", response.Error)
	}
	if response.Message == nil {
		return ChatResponse{}, ErrEmptyResponse
	}

	return ChatResponse{Model: response.Model, Message: *response.Message}, nil
}
