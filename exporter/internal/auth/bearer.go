package auth

import (
	"net/http"
	"strings"
)

const bearerScheme = "Bearer"

// BearerToken extracts the credential of an "Authorization: Bearer <token>"
// header. ok is false when the header is missing, uses another scheme, or
// carries an empty token.
func BearerToken(r *http.Request) (token string, ok bool) {
	h := r.Header.Get("Authorization")
	scheme, rest, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(rest)
	return token, token != ""
}

// Authorized reports whether r presents a bearer key contained in set.
func Authorized(r *http.Request, set *KeySet) bool {
	token, ok := BearerToken(r)
	if !ok {
		return false
	}
	return set.Contains(token)
}
