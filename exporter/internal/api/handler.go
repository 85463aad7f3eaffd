package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/obsidianstack/homebridge-exporter/exporter/internal/auth"
	"github.com/obsidianstack/homebridge-exporter/exporter/internal/translate"
	"github.com/obsidianstack/homebridge-exporter/pkg/types"
)

// TokenSource hands out a hub credential that is valid now.
// *session.Session implements it.
type TokenSource interface {
	Token(ctx context.Context) (*types.Credential, error)
}

// Hub is the subset of the hub client used by the handlers.
// *hub.Client implements it.
type Hub interface {
	ListAccessories(ctx context.Context, token string) ([]types.Accessory, error)
	Restart(ctx context.Context, token string) error
}

// Options tunes the handler.
type Options struct {
	// Prefix is prepended to every metric name; empty means none.
	Prefix string
	// RestartInterval is the minimum time between accepted restarts.
	// Zero disables throttling.
	RestartInterval time.Duration
}

// Handler serves the exporter endpoints.
type Handler struct {
	tokens  TokenSource
	hub     Hub
	keys    *auth.Keys
	prefix  string
	mux     *http.ServeMux

	// restartMu serializes restarts so the limiter check and the token
	// spend after a successful restart cannot interleave.
	restartMu sync.Mutex
	limiter   *rate.Limiter
}

// New creates a Handler and registers all routes. The returned handler is
// already wrapped in the RequestID and Logging middleware.
func New(tokens TokenSource, hub Hub, keys *auth.Keys, opts Options) http.Handler {
	if keys == nil {
		keys = auth.NewKeys(nil)
	}
	h := &Handler{
		tokens: tokens,
		hub:    hub,
		keys:   keys,
		prefix: opts.Prefix,
		mux:    http.NewServeMux(),
	}
	if opts.RestartInterval > 0 {
		h.limiter = rate.NewLimiter(rate.Every(opts.RestartInterval), 1)
	}

	h.mux.HandleFunc("/metrics", h.metrics)
	h.mux.HandleFunc("/restart", h.restart)
	h.mux.HandleFunc("/ping", h.ping)
	h.mux.HandleFunc("/health", h.ping)

	return Chain(h, RequestID(), Logging())
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// ping returns GET /ping and GET /health.
func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("PONG"))
}

// metrics returns GET /metrics: one snapshot of every numeric characteristic.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	cred, err := h.tokens.Token(ctx)
	if err != nil {
		h.fail(w, r, "metrics", err)
		return
	}

	accessories, err := h.hub.ListAccessories(ctx, cred.AccessToken)
	if err != nil {
		h.fail(w, r, "metrics", err)
		return
	}

	reg := translate.Translate(accessories, h.prefix)

	var buf bytes.Buffer
	if err := translate.Encode(&buf, reg); err != nil {
		h.fail(w, r, "metrics", err)
		return
	}

	w.Header().Set("Content-Type", translate.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// restart returns POST /restart.
func (h *Handler) restart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !auth.Authorized(r, h.keys.Load()) {
		jsonErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.restartMu.Lock()
	defer h.restartMu.Unlock()

	// Only a restart the hub accepted spends the limiter token.
	if h.limiter != nil && h.limiter.Tokens() < 1 {
		jsonErr(w, http.StatusTooManyRequests, "restart requested too recently")
		return
	}
	ctx := r.Context()

	cred, err := h.tokens.Token(ctx)
	if err != nil {
		h.fail(w, r, "restart", err)
		return
	}
	if err := h.hub.Restart(ctx, cred.AccessToken); err != nil {
		h.fail(w, r, "restart", err)
		return
	}
	if h.limiter != nil {
		h.limiter.Allow()
	}

	slog.Info("api: hub restart requested", "request_id", RequestIDFromContext(ctx))
	jsonResp(w, http.StatusOK, resultResponse{Result: resultDone})
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, route string, err error) {
	slog.Error("api: "+route+" failed", "request_id", RequestIDFromContext(r.Context()), "err", err)
	jsonErr(w, http.StatusInternalServerError, err.Error())
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
