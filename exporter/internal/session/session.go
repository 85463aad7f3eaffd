package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/obsidianstack/homebridge-exporter/pkg/types"
)

//go:generate mockgen -destination=mock/mock_session.go -package=mock_session . Authenticator

// Authenticator performs the hub login call. *hub.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*types.Credential, error)
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, so tests can move time without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session owns the cached hub credential. It is safe for concurrent use and
// is meant to be created once and shared by all request handlers.
type Session struct {
	auth     Authenticator
	username string
	password string

	mu   sync.Mutex
	cred *types.Credential

	flight singleflight.Group
	now    func() time.Time
}

// New creates a Session with no credential; the first Token call logs in.
func New(auth Authenticator, username, password string, opts ...Option) *Session {
	s := &Session{
		auth:     auth,
		username: username,
		password: password,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns a credential that is valid now, logging in when the cached
// one is missing or expired. The returned credential is a copy.
func (s *Session) Token(ctx context.Context) (*types.Credential, error) {
	if cred, ok := s.cached(); ok {
		return cred, nil
	}

	v, err, shared := s.flight.Do("login", func() (interface{}, error) {
		// A flight that finished between cached() and Do may already have
		// installed a fresh credential.
		if cred, ok := s.cached(); ok {
			return cred, nil
		}
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("session: joined in-flight login")
	}
	cred := *v.(*types.Credential)
	return &cred, nil
}

// Valid reports whether a credential usable right now is cached.
// It never touches the network.
func (s *Session) Valid() bool {
	_, ok := s.cached()
	return ok
}

// cached returns a copy of the held credential if it is valid now.
func (s *Session) cached() (*types.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cred.ValidAt(s.now()) {
		return nil, false
	}
	cred := *s.cred
	return &cred, true
}

// refresh performs the login and installs or clears the credential.
func (s *Session) refresh(ctx context.Context) (*types.Credential, error) {
	slog.Info("session: token missing or expired, logging in")

	cred, err := s.auth.Login(ctx, s.username, s.password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.cred = nil
		slog.Error("session: login failed", "err", err)
		return nil, err
	}
	// Validity is measured on the session clock, so IssuedAt is restamped here.
	installed := *cred
	installed.IssuedAt = s.now()
	s.cred = &installed

	slog.Info("session: new token installed",
		"expires_in", installed.ExpiresIn,
		"expires_at", installed.ExpiresAt().UTC().Format(time.RFC3339))
	out := installed
	return &out, nil
}
