package hub

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/obsidianstack/homebridge-exporter/exporter/internal/config"
	"github.com/obsidianstack/homebridge-exporter/pkg/types"
)

const (
	loginPath       = "/api/auth/login"
	accessoriesPath = "/api/accessories"
	restartPath     = "/api/server/restart"

	// loginOTP is sent with every login. The hub ignores it unless 2FA is
	// enabled, which the exporter does not support.
	loginOTP = "123"

	// maxErrorBody caps how much of an error response is kept in errors.
	maxErrorBody = 4 << 10
)

// Client talks to one Homebridge UI instance.
type Client struct {
	baseURI string
	client  *http.Client
	now     func() time.Time
}

// New builds a Client for cfg.URI. The http.Client is built once and reused.
func New(cfg config.HubConfig) (*Client, error) {
	client, err := buildHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("hub %q: build http client: %w", cfg.URI, err)
	}
	return NewWithHTTPClient(cfg.URI, client), nil
}

// NewWithHTTPClient builds a Client around an existing http.Client.
func NewWithHTTPClient(baseURI string, client *http.Client) *Client {
	return &Client{
		baseURI: strings.TrimRight(baseURI, "/"),
		client:  client,
		now:     time.Now,
	}
}

// BaseURI returns the hub base URI the client is bound to.
func (c *Client) BaseURI() string { return c.baseURI }

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// Login exchanges username and password for a bearer credential.
// IssuedAt is set to the time the response was received.
func (c *Client) Login(ctx context.Context, username, password string) (*types.Credential, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password, OTP: loginOTP})
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := c.newRequest(ctx, http.MethodPost, loginPath, "", bytes.NewReader(body))
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, &AuthError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	var cred types.Credential
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return nil, &AuthError{Status: resp.StatusCode, Err: fmt.Errorf("decode JSON: %w", err)}
	}
	if cred.AccessToken == "" {
		return nil, &AuthError{Status: resp.StatusCode, Err: fmt.Errorf("response has no access_token")}
	}
	cred.IssuedAt = c.now()

	slog.Info("hub: login succeeded", "uri", c.baseURI, "expires_in", cred.ExpiresIn)
	return &cred, nil
}

// ListAccessories returns every accessory the hub knows about.
func (c *Client) ListAccessories(ctx context.Context, token string) ([]types.Accessory, error) {
	const op = "list accessories"

	req, err := c.newRequest(ctx, http.MethodGet, accessoriesPath, token, nil)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, &FetchError{Op: op, Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	var accessories []types.Accessory
	if err := json.NewDecoder(resp.Body).Decode(&accessories); err != nil {
		return nil, &FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode JSON: %w", err)}
	}

	slog.Debug("hub: fetched accessories", "count", len(accessories))
	return accessories, nil
}

// Restart asks the hub to restart Homebridge. Only a transport failure is an
// error: once a response arrives the request is considered delivered.
func (c *Client) Restart(ctx context.Context, token string) error {
	const op = "restart"

	req, err := c.newRequest(ctx, http.MethodPut, restartPath, token, nil)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if !success(resp.StatusCode) {
		slog.Warn("hub: restart answered with non-success status", "status", resp.StatusCode)
	}
	return nil
}

// newRequest builds a JSON request against the hub, authenticated when token
// is non-empty.
func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURI+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func success(code int) bool { return code >= 200 && code < 300 }

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}

// buildHTTPClient constructs an http.Client honouring the hub TLS settings.
func buildHTTPClient(cfg config.HubConfig) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	if cfg.TLS.CAFile != "" {
		caPEM, err := os.ReadFile(cfg.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no valid certs found in ca file %q", cfg.TLS.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultHubTimeout
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
