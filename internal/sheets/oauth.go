package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// DefaultCallbackAddr is where the interactive flow listens for Google's redirect.
const DefaultCallbackAddr = "localhost:8080"

// AuthTimeout bounds how long the interactive flow waits for the browser.
const AuthTimeout = 5 * time.Minute

// OAuth2Config holds OAuth2 configuration.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string // Where to persist the token; empty disables persistence
	CallbackAddr string
}

func (c OAuth2Config) oauthConfig() *oauth2.Config {
	addr := c.CallbackAddr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://" + addr + "/callback",
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// AuthenticateInteractive runs the browser based OAuth2 flow and returns the
// resulting token. The token is saved to TokenFile when one is configured.
func AuthenticateInteractive(ctx context.Context, cfg OAuth2Config) (*oauth2.Token, error) {
	oauthConfig := cfg.oauthConfig()

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	redirect, err := http.NewRequest(http.MethodGet, oauthConfig.RedirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid callback address: %w", err)
	}

	listener, err := net.Listen("tcp", redirect.URL.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	codes := make(chan string, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			errs <- errors.New("oauth state mismatch")
			http.Error(w, "Authentication failed: state mismatch.", http.StatusBadRequest)
			return
		}
		code := query.Get("code")
		if code == "" {
			errs <- errors.New("no authorization code received")
			http.Error(w, "Authentication failed: no authorization code.", http.StatusBadRequest)
			return
		}
		codes <- code
		_, _ = fmt.Fprint(w, "Authentication successful. You can close this window and return to the terminal.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errs <- fmt.Errorf("callback server failed: %w", serveErr)
		}
	}()
	defer func() {
		if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
			slog.Warn("Error shutting down callback server", "error", shutdownErr)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	slog.Info("Google Sheets authentication required")
	slog.Info("Please visit this URL to authenticate", "url", authURL)

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(AuthTimeout):
		return nil, fmt.Errorf("authentication timed out after %s", AuthTimeout)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if cfg.TokenFile != "" {
		if err := SaveToken(cfg.TokenFile, token); err != nil {
			slog.Warn("Failed to save token", "error", err, "file", cfg.TokenFile)
		}
	}

	return token, nil
}

// LoadToken reads a token previously written by SaveToken.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", tokenFile, err)
	}
	return token, nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// GetOrCreateToken returns a stored token, refreshed when expired, or runs
// the interactive flow when none is stored.
func GetOrCreateToken(ctx context.Context, cfg OAuth2Config) (*oauth2.Token, error) {
	if cfg.TokenFile != "" {
		if token, err := LoadToken(cfg.TokenFile); err == nil {
			if token.Valid() {
				return token, nil
			}
			refreshed, err := cfg.oauthConfig().TokenSource(ctx, token).Token()
			if err == nil {
				if saveErr := SaveToken(cfg.TokenFile, refreshed); saveErr != nil {
					slog.Warn("Failed to save refreshed token", "error", saveErr)
				}
				return refreshed, nil
			}
			slog.Info("Stored token could not be refreshed, re-authenticating", "error", err)
		}
	}

	return AuthenticateInteractive(ctx, cfg)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
