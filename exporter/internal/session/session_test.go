package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/obsidianstack/homebridge-exporter/exporter/internal/hub"
	"github.com/obsidianstack/homebridge-exporter/exporter/internal/session"
	mock_session "github.com/obsidianstack/homebridge-exporter/exporter/internal/session/mock"
	"github.com/obsidianstack/homebridge-exporter/pkg/types"
)

// fakeClock is a goroutine-safe clock that only moves when told to.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func credential(token string) *types.Credential {
	return &types.Credential{AccessToken: token, TokenType: "Bearer", ExpiresIn: 3600}
}

func newSession(t *testing.T) (*session.Session, *mock_session.MockAuthenticator, *fakeClock) {
	t.Helper()
	ctrl := gomock.NewController(t)
	auth := mock_session.NewMockAuthenticator(ctrl)
	clk := newFakeClock()
	return session.New(auth, "admin", "pw", session.WithClock(clk.Now)), auth, clk
}

func TestToken_CachedWhileValid(t *testing.T) {
	s, auth, clk := newSession(t)
	auth.EXPECT().Login(gomock.Any(), "admin", "pw").Return(credential("tok-1"), nil).Times(1)

	first, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first.AccessToken)
	assert.True(t, first.IssuedAt.Equal(clk.Now()), "IssuedAt is stamped with the session clock")

	clk.Advance(3599 * time.Second)
	second, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", second.AccessToken)
	assert.True(t, s.Valid())
}

func TestToken_RefreshesAfterExpiry(t *testing.T) {
	s, auth, clk := newSession(t)
	gomock.InOrder(
		auth.EXPECT().Login(gomock.Any(), "admin", "pw").Return(credential("tok-1"), nil),
		auth.EXPECT().Login(gomock.Any(), "admin", "pw").Return(credential("tok-2"), nil),
	)

	cred, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cred.AccessToken)

	clk.Advance(3600 * time.Second)
	assert.False(t, s.Valid(), "credential must expire at exactly expires_in")

	cred, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", cred.AccessToken)
}

func TestToken_FailureClearsCredential(t *testing.T) {
	s, auth, clk := newSession(t)
	loginErr := &hub.AuthError{Status: 401, Body: "Unauthorized"}
	gomock.InOrder(
		auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(credential("tok-1"), nil),
		auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, loginErr),
		auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(credential("tok-3"), nil),
	)

	_, err := s.Token(context.Background())
	require.NoError(t, err)

	clk.Advance(time.Hour)
	_, err = s.Token(context.Background())
	var authErr *hub.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 401, authErr.Status)
	assert.False(t, s.Valid())

	cred, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-3", cred.AccessToken)
}

func TestToken_ReturnsCopy(t *testing.T) {
	s, auth, _ := newSession(t)
	auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(credential("tok-1"), nil).Times(1)

	cred, err := s.Token(context.Background())
	require.NoError(t, err)
	cred.AccessToken = "mutated"

	again, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", again.AccessToken)
}

func TestToken_ConcurrentCallersShareOneLogin(t *testing.T) {
	s, auth, _ := newSession(t)
	auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string) (*types.Credential, error) {
			time.Sleep(20 * time.Millisecond)
			return credential("tok-shared"), nil
		}).Times(1)

	const callers = 50
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cred, err := s.Token(context.Background())
			errs[i] = err
			if err == nil {
				tokens[i] = cred.AccessToken
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-shared", tokens[i])
	}
}

func TestToken_ConcurrentCallersShareOneFailure(t *testing.T) {
	s, auth, _ := newSession(t)
	release := make(chan struct{})
	loginErr := &hub.AuthError{Status: 500, Body: "boom"}
	auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string) (*types.Credential, error) {
			<-release
			return nil, loginErr
		}).Times(1)

	const callers = 20
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Token(context.Background())
		}(i)
	}
	// Give every caller time to block on the in-flight login.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.True(t, errors.Is(errs[i], loginErr), "caller %d: got %v", i, errs[i])
	}
}

func TestToken_CallerCancellationDoesNotAbortLogin(t *testing.T) {
	s, auth, _ := newSession(t)
	auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (*types.Credential, error) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return credential("tok-1"), nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cred, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cred.AccessToken)
}

func TestValid_EmptySession(t *testing.T) {
	s, _, _ := newSession(t)
	assert.False(t, s.Valid())
}
