package types

import (
	"math"
	"time"
)

// Credential is a bearer token issued by the hub's login endpoint.
type Credential struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is the token lifetime in seconds, counted from IssuedAt.
	ExpiresIn uint64 `json:"expires_in"`
	// IssuedAt is not part of the hub response; it is stamped locally when
	// the credential is received.
	IssuedAt time.Time `json:"-"`
}

// maxLifetimeSeconds is the largest ExpiresIn that fits a time.Duration.
const maxLifetimeSeconds = uint64(math.MaxInt64 / int64(time.Second))

// Lifetime returns ExpiresIn as a duration, saturating at the largest
// representable duration.
func (c *Credential) Lifetime() time.Duration {
	secs := c.ExpiresIn
	if secs > maxLifetimeSeconds {
		secs = maxLifetimeSeconds
	}
	return time.Duration(secs) * time.Second
}

// ExpiresAt is the first instant at which the credential is no longer valid.
func (c *Credential) ExpiresAt() time.Time {
	return c.IssuedAt.Add(c.Lifetime())
}

// ValidAt reports whether the credential can be used at now, i.e.
// now - IssuedAt < ExpiresIn. A nil or empty credential is never valid.
func (c *Credential) ValidAt(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	return now.Sub(c.IssuedAt) < c.Lifetime()
}
