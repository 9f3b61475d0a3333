// Package summary asks a language model for a short written outlook on a sales forecast.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/llm"
	"github.com/Veraticus/retail-insights/internal/model"
)

// ErrEmptyForecast is returned when there are no forecast rows to describe.
var ErrEmptyForecast = errors.New("forecast has no rows")

// Summarizer turns a forecast into prose through an llm.Client.
type Summarizer struct {
	client  llm.Client
	prompts *PromptBuilder
	logger  *slog.Logger
	retry   common.RetryOptions
}

// New creates a Summarizer. A nil logger falls back to slog.Default.
func New(client llm.Client, retry common.RetryOptions, logger *slog.Logger) (*Summarizer, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if retry.Logger == nil {
		retry.Logger = logger
	}
	return &Summarizer{client: client, prompts: prompts, retry: retry, logger: logger}, nil
}

// Summarize sends one single-message chat request and returns the reply verbatim.
func (s *Summarizer) Summarize(ctx context.Context, forecast model.Forecast) (string, error) {
	if len(forecast.Points) == 0 {
		return "", ErrEmptyForecast
	}

	prompt, err := s.prompts.Build(forecast)
	if err != nil {
		return "", err
	}

	s.logger.Debug("Requesting forecast summary", "prompt_chars", len(prompt))

	var resp llm.ChatResponse
	err = common.WithRetry(ctx, func() error {
		var chatErr error
		resp, chatErr = s.client.Chat(ctx, []llm.Message{llm.UserMessage(prompt)})
		return chatErr
	}, s.retry)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}

	s.logger.Debug("Received forecast summary",
		"model", resp.Model,
		"words", len(strings.Fields(resp.Message.Content)))

	return resp.Message.Content, nil
}
