// Package types defines the Homebridge data shared by the hub client, the
// token session and the metric translator.
//
// These are the canonical in-memory representations of what the hub REST API
// returns: accessories, their service characteristics, and the bearer
// credential issued by /api/auth/login. Characteristic values arrive with no
// fixed JSON type, so Value models them as a tagged union with an explicit
// float coercion (see Value.Float).
package types
