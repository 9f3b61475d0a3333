package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const (
	defaultListenAddr  = "localhost:8080"
	defaultAuthTimeout = 5 * time.Minute
	callbackPath       = "/callback"
)

var (
	// ErrStateMismatch is returned when the callback carries a foreign state value.
	ErrStateMismatch = errors.New("oauth state mismatch")
	// ErrNoAuthCode is returned when the callback carries no authorization code.
	ErrNoAuthCode = errors.New("no authorization code received")
)

// OAuth2Config holds the installed-app OAuth2 settings for Sheets access.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string        // written after a successful exchange when set
	ListenAddr   string        // callback listener, default localhost:8080
	Timeout      time.Duration // how long to wait for the browser, default 5m
}

func (c OAuth2Config) listenAddr() string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	return defaultListenAddr
}

func (c OAuth2Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultAuthTimeout
}

func (c OAuth2Config) endpointConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://" + c.listenAddr() + callbackPath,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// AuthenticateOAuth2Interactive runs the browser consent flow and returns a token
// with a refresh token. It blocks until the callback arrives, ctx ends or the timeout passes.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	oauthConfig := config.endpointConfig()
	state := uuid.NewString()

	codes := make(chan string, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle(callbackPath, callbackHandler(state, codes, errs))
	server := &http.Server{Addr: config.listenAddr(), Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("failed to start callback server: %w", err)
		}
	}()
	defer func() {
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	slog.Info("Please visit this URL to authorize Google Sheets access", "url", authURL)

	timer := time.NewTimer(config.timeout())
	defer timer.Stop()

	var code string
	select {
	case code = <-codes:
		slog.Info("Received authorization code")
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("authentication timeout: no response within %s", config.timeout())
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, token); err != nil {
			slog.Warn("Failed to save token to file", "error", err, "file", config.TokenFile)
		} else {
			slog.Info("Token saved", "file", config.TokenFile)
		}
	}

	return token, nil
}

const callbackPage = `<html><body><h1>%s</h1><p>%s</p></body></html>`

// callbackHandler accepts the redirect from Google and forwards the code or the failure.
func callbackHandler(state string, codes chan<- string, errs chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var err error
		switch {
		case q.Get("state") != state:
			err = ErrStateMismatch
		case q.Get("error") != "":
			err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			err = ErrNoAuthCode
		}

		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, callbackPage, "Authentication failed", err.Error())
			select {
			case errs <- err:
			default:
			}
			return
		}

		_, _ = fmt.Fprintf(w, callbackPage, "Authentication successful", "You can close this window and return to the terminal.")
		select {
		case codes <- q.Get("code"):
		default:
		}
	}
}

// LoadToken reads a token written by the interactive flow.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", tokenFile, err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
