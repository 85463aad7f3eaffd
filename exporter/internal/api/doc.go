// Package api implements the exporter's HTTP surface.
//
// New(tokens, hub, keys, opts) returns an http.Handler that serves:
//
//	GET  /metrics  — live accessory readings as OpenMetrics text
//	POST /restart  — restart the hub; requires "Authorization: Bearer <key>"
//	GET  /ping     — liveness probe, body "PONG"
//	GET  /health   — alias of /ping
//
// Every scrape is a fresh snapshot: a hub token is obtained from the
// TokenSource, the accessory list is fetched and translated, and the result
// is encoded into a buffer before anything is written. Failures are reported
// as 500 with a JSON body {"error": "..."}. /restart is checked against the
// current key set before any network call and is throttled by a token bucket.
//
// Known routes answer other methods with 405. Requests pass through the
// RequestID and Logging middleware. No external HTTP framework is used.
package api
