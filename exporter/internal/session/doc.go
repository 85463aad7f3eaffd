// Package session caches the hub bearer credential.
//
// A Session holds the hub username and password and at most one
// types.Credential. Token returns the cached credential while it is valid and
// logs in again otherwise. Concurrent callers that find the cache empty or
// expired share a single login (singleflight); the mutex only guards reading
// and installing the credential, never the network call.
//
// A failed login clears the cached credential and is returned to every caller
// that shared it.
package session
