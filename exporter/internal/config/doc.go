// Package config loads the exporter configuration.
//
// Config fields:
//   - Hub.URI             — Homebridge UI base URI (default http://localhost:8581)
//   - Hub.Username        — hub login user (required)
//   - Hub.Password        — literal password; Hub.PasswordEnv names an env var instead
//   - Hub.Timeout         — per-request timeout against the hub (default 10s)
//   - Hub.TLS             — optional CA file and insecure_skip_verify for https hubs
//   - HTTP.Port           — port serving /metrics, /restart, /ping (default 8001)
//   - Metrics.Prefix      — metric name prefix (default "homebridge"; empty disables)
//   - Auth.KeyFile        — YAML file with the bearer keys allowed to call /restart
//   - Auth.Watch          — reload the key file when it changes (default true)
//   - Restart.MinInterval — minimum spacing between accepted restarts (default 30s, 0 disables)
//
// Load(path, overrides...) applies defaults before unmarshalling, then the
// overrides (the binary passes its command line flags this way), then
// validates.
package config
