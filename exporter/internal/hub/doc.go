// Package hub is the client for the Homebridge UI REST API.
//
// New(cfg) builds a Client bound to one base URI. The Client is stateless
// apart from its http.Client and exposes the three calls the exporter needs:
//
//	Login           POST /api/auth/login       -> *types.Credential
//	ListAccessories GET  /api/accessories      -> []types.Accessory
//	Restart         PUT  /api/server/restart
//
// Login failures are reported as *AuthError; accessory and restart failures
// as *FetchError. No call is retried; retry policy belongs to the caller.
package hub
