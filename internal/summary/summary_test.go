package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/llm"
	"github.com/Veraticus/retail-insights/internal/model"
)

type fakeClient struct {
	err      error
	reply    string
	messages [][]llm.Message
}

func (f *fakeClient) Chat(_ context.Context, messages []llm.Message) (llm.ChatResponse, error) {
	f.messages = append(f.messages, messages)
	if f.err != nil {
		return llm.ChatResponse{}, f.err
	}
	return llm.ChatResponse{Model: "fake", Message: llm.Message{Role: llm.RoleAssistant, Content: f.reply}}, nil
}

func makeForecast(n, horizon int) model.Forecast {
	start := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.ForecastPoint, n)
	for i := range points {
		mean := 1000.0 + float64(i)*10.5
		points[i] = model.ForecastPoint{Date: start.AddDate(0, 0, 7*i), Mean: mean, Lower: mean - 50, Upper: mean + 50}
	}
	return model.Forecast{Points: points, Horizon: horizon}
}

func TestFormatTable(t *testing.T) {
	f := makeForecast(2, 2)
	f.Points[1].Mean = 12345.5

	got := FormatTable(f)
	want := "        ds         yhat\n" +
		"2012-01-01  1000.000000\n" +
		"2012-01-08 12345.500000"
	assert.Equal(t, want, got)
}

func TestPromptBuilder_Build(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	prompt, err := pb.Build(makeForecast(20, 12))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "\nYou are a business analyst."))
	assert.Contains(t, prompt, "summarize the expected trend for the next 12 weeks.")
	assert.Contains(t, prompt, "Keep it professional and under 120 words.\n")

	// Header plus the final 12 rows only.
	assert.NotContains(t, prompt, "2012-01-01")
	assert.Contains(t, prompt, "2012-05-13")
	lines := strings.Split(FormatTable(makeForecast(20, 12).Tail(PromptRows)), "\n")
	assert.Len(t, lines, 13)
}

func TestPromptBuilder_ShortHorizon(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	f := makeForecast(20, 4)
	prompt, err := pb.Build(f)
	require.NoError(t, err)

	assert.Contains(t, prompt, "summarize the expected trend for the next 4 weeks.")
	for _, p := range f.History() {
		assert.NotContains(t, prompt, model.FormatDate(p.Date))
	}
	for _, p := range f.Future().Points {
		assert.Contains(t, prompt, model.FormatDate(p.Date))
	}
	assert.Equal(t, FormatTable(f.Future()), FormatTable(f.Future().Tail(PromptRows)))
}

func TestSummarizer_Summarize(t *testing.T) {
	client := &fakeClient{reply: "  Sales rise into the holidays.\n"}
	s, err := New(client, common.RetryOptions{MaxAttempts: 1}, common.DiscardLogger())
	require.NoError(t, err)

	text, err := s.Summarize(context.Background(), makeForecast(30, 12))
	require.NoError(t, err)
	assert.Equal(t, "  Sales rise into the holidays.\n", text)

	require.Len(t, client.messages, 1)
	require.Len(t, client.messages[0], 1)
	assert.Equal(t, llm.RoleUser, client.messages[0][0].Role)
	assert.Contains(t, client.messages[0][0].Content, "You are a business analyst.")
}

func TestSummarizer_Errors(t *testing.T) {
	t.Run("client failure propagates", func(t *testing.T) {
		client := &fakeClient{err: llm.ErrEmptyResponse}
		s, err := New(client, common.RetryOptions{MaxAttempts: 1}, nil)
		require.NoError(t, err)

		_, err = s.Summarize(context.Background(), makeForecast(5, 2))
		assert.ErrorIs(t, err, llm.ErrEmptyResponse)
		assert.Len(t, client.messages, 1)
	})

	t.Run("retries when configured", func(t *testing.T) {
		client := &fakeClient{err: errors.New("connection refused")}
		s, err := New(client, common.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond}, nil)
		require.NoError(t, err)

		_, err = s.Summarize(context.Background(), makeForecast(5, 2))
		assert.ErrorIs(t, err, common.ErrMaxRetries)
		assert.Len(t, client.messages, 2)
	})

	t.Run("empty forecast", func(t *testing.T) {
		s, err := New(&fakeClient{}, common.RetryOptions{}, nil)
		require.NoError(t, err)

		_, err = s.Summarize(context.Background(), model.Forecast{})
		assert.ErrorIs(t, err, ErrEmptyForecast)
	})

	t.Run("nil client", func(t *testing.T) {
		_, err := New(nil, common.RetryOptions{}, nil)
		assert.Error(t, err)
	})
}
