// Package notify pings an automation webhook once a run has finished.
package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultWebhookURL is the automation endpoint triggered after each run.
const DefaultWebhookURL = "https://krishnavyasdesugari.app.n8n.cloud/webhook-test/run-forecast"

// Notifier sends a single unauthenticated GET to a webhook.
type Notifier struct {
	httpClient *http.Client
	logger     *slog.Logger
	url        string
}

// New creates a Notifier. A zero timeout waits indefinitely.
func New(url string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if url == "" {
		url = DefaultWebhookURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		url:        url,
	}
}

// URL returns the webhook address.
func (n *Notifier) URL() string {
	return n.url
}

// Notify fires the webhook and reports whether it answered with a 2xx status.
// Failures never propagate; they are logged at warn level.
func (n *Notifier) Notify(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url, nil)
	if err != nil {
		n.logger.Warn("Webhook request could not be built", "url", n.url, "error", err)
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("Webhook unreachable", "url", n.url, "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn("Webhook returned non-success status", "url", n.url, "status", resp.StatusCode)
		return false
	}

	n.logger.Info("Webhook triggered", "url", n.url, "status", resp.StatusCode)
	return true
}
