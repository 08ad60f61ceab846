// Package services holds the client-side application services the console
// drives: the auth facade and the session list.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/investdesk/internal/client/client"
	"github.com/dmitrijs2005/investdesk/internal/logging"
)

// State is the facade's view of the user's authentication progress.
type State int

const (
	Anonymous State = iota
	AwaitingVerification
	Authenticated
)

func (s State) String() string {
	switch s {
	case AwaitingVerification:
		return "awaiting-verification"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// CredentialStore is the part of the credential store the facade needs.
type CredentialStore interface {
	IsAuthenticated() bool
	UserID() (int64, bool)
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	SetUserID(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}

// AuthService is the single entry point the UI uses for authentication.
type AuthService interface {
	State() State
	PendingEmail() string
	IsAuthenticated() bool
	UserID() (int64, bool)
	Register(ctx context.Context, email string, password []byte) error
	VerifyEmail(ctx context.Context, code string) error
	ResendCode(ctx context.Context) error
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
}

type authService struct {
	issuer client.TokenIssuer
	store  CredentialStore
	logger logging.Logger

	mu           sync.Mutex
	pendingEmail string
}

// NewAuthService builds the facade. Authentication state is always read from
// store; the facade itself only remembers the email awaiting verification.
func NewAuthService(issuer client.TokenIssuer, store CredentialStore, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{issuer: issuer, store: store, logger: logger}
}

func (a *authService) State() State {
	if a.store.IsAuthenticated() {
		return Authenticated
	}
	if a.PendingEmail() != "" {
		return AwaitingVerification
	}
	return Anonymous
}

func (a *authService) PendingEmail() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingEmail
}

func (a *authService) setPendingEmail(email string) {
	a.mu.Lock()
	a.pendingEmail = email
	a.mu.Unlock()
}

func (a *authService) IsAuthenticated() bool {
	return a.store.IsAuthenticated()
}

func (a *authService) UserID() (int64, bool) {
	return a.store.UserID()
}

// Register creates the account and remembers the email for verification.
func (a *authService) Register(ctx context.Context, email string, password []byte) error {
	if err := a.issuer.Register(ctx, email, password); err != nil {
		return err
	}
	a.setPendingEmail(email)
	a.logger.Info(ctx, "account registered, awaiting verification", "email", email)
	return nil
}

// VerifyEmail confirms the pending registration. The user still has to log in.
func (a *authService) VerifyEmail(ctx context.Context, code string) error {
	email := a.PendingEmail()
	if email == "" {
		return ErrNoPendingVerification
	}
	if err := a.issuer.VerifyEmail(ctx, email, code); err != nil {
		return err
	}
	a.setPendingEmail("")
	a.logger.Info(ctx, "email verified", "email", email)
	return nil
}

func (a *authService) ResendCode(ctx context.Context) error {
	email := a.PendingEmail()
	if email == "" {
		return ErrNoPendingVerification
	}
	return a.issuer.ResendCode(ctx, email)
}

// Login stores the issued pair and resolves the user id. A failed identity
// lookup is logged and leaves the user id absent; the login still counts.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	pair, err := a.issuer.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := a.store.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	a.setPendingEmail("")

	id, err := a.issuer.Me(ctx)
	if err != nil {
		a.logger.Warn(ctx, "could not resolve user id after login", "error", err)
		return nil
	}
	if err := a.store.SetUserID(ctx, id); err != nil {
		a.logger.Warn(ctx, "could not save user id", "error", err)
		return nil
	}

	a.logger.Info(ctx, "logged in", "user_id", id)
	return nil
}

// Logout forgets the local credentials. The server session stays until it
// expires or is revoked from another device.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	a.logger.Info(ctx, "logged out")
	return nil
}
