// Package client talks to the identity service over HTTP/JSON.
//
// # Overview
//
//  1. TokenIssuer: Register, VerifyEmail, ResendCode, Login, Refresh, Me.
//  2. SessionDirectory: Sessions, DeleteSession.
//  3. Gateway: every call goes through it. It attaches the bearer token from
//     the credential store and, when an authenticated call gets a 401,
//     refreshes the token pair once and replays the call once.
//
// # Refresh coalescing
//
// Refresh tokens rotate: using one invalidates it. If several calls hit an
// expired access token at the same time, only the first 401 starts a refresh;
// the rest wait for that refresh and reuse its result. A failed refresh clears
// the credential store and fires the session-expired handler; this is the only
// forced logout.
//
// # Error Handling
//
// Failures are sentinel errors matched with errors.Is: ErrInvalidCredentials,
// ErrConflict, ErrInvalidCode, ErrRefreshInvalid, ErrUnauthorized,
// ErrForbidden, ErrNotFound, ErrServerError, ErrUnreachable, ErrTimeout.
// Non-2xx responses are *StatusError values carrying the server message.
// Nothing except the single 401 is retried.
package client
