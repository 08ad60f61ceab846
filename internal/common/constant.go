// Package common contains constants, sentinel errors and small helpers shared
// by the client and the identity service.
package common

const (
	// AuthorizationHeader carries the bearer credential.
	AuthorizationHeader = "Authorization"
	// BearerPrefix precedes the access token in AuthorizationHeader.
	BearerPrefix = "Bearer "
	// RequestIDHeader correlates client and server log lines for one call.
	RequestIDHeader = "X-Request-ID"
)
