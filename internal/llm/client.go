package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Veraticus/retail-insights/internal/common"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrEmptyResponse is returned when the service answers without message content.
	ErrEmptyResponse = errors.New("response has no message content")
	// ErrNoMessages is returned when a chat request carries no messages.
	ErrNoMessages = errors.New("chat request has no messages")
)

// Client defines the interface for LLM providers.
type Client interface {
	Chat(ctx context.Context, messages []Message) (ChatResponse, error)
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse contains the reply message and the model that produced it.
type ChatResponse struct {
	Model   string
	Message Message
}

// Config holds configuration for an LLM client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// UserMessage builds a single user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// newHTTPClient builds the HTTP client shared by providers. A zero timeout waits indefinitely.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// statusError turns a non-200 reply into an error the retry loop understands.
// Rate limits back off for the longest delay; other client errors are final.
func statusError(provider string, status int, body []byte) error {
	err := fmt.Errorf("%s API error (status %d): %s", provider, status, string(body))
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case status >= 400 && status < 500:
		return &common.RetryableError{Err: err, Retryable: false}
	default:
		return err
	}
}
