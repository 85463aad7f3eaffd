// Package auth guards the exporter's mutating endpoints with a bearer-key
// allowlist.
//
// LoadKeySet reads a YAML file of the form
//
//	keys:
//	  - foo
//	  - bar
//
// into an immutable KeySet. A missing file yields an empty set, which
// rejects every request. Keys holds the current set behind an atomic pointer
// so Watch can swap in a reloaded file while requests are being served.
//
// Authorized(r, set) accepts a request whose Authorization header is
// "Bearer <key>" with <key> in set. The scheme is matched case-insensitively
// and the key with a constant-time comparison.
package auth
