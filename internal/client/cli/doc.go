// Package cli provides the interactive investdesk console.
//
// It wires configuration, the credential store, the identity service client
// and a read-eval-print loop. The prompt shows the authentication state;
// a session that can no longer be refreshed prints a notice and drops the
// console back to anonymous.
//
// Commands:
//   - register, verify, resend: create and confirm an account
//   - login, logout, whoami, status
//   - sessions, revoke <id>: list and revoke device sessions
//   - help, exit
//
// The loop is started via App.Run(ctx), which blocks until the user exits.
package cli
