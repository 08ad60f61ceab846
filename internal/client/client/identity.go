package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/investdesk/internal/client/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type meResponse struct {
	ID int64 `json:"id"`
}

// Register creates an unverified account. ErrConflict if the email is taken.
func (c *HTTPClient) Register(ctx context.Context, email string, password []byte) error {
	req := &Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   credentialsRequest{Email: email, Password: string(password)},
		Public: true,
	}
	if err := c.gw.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// VerifyEmail confirms the account. ErrInvalidCode on a wrong or expired code.
func (c *HTTPClient) VerifyEmail(ctx context.Context, email, code string) error {
	req := &Request{
		Method: http.MethodPost,
		Path:   "/auth/verify-email",
		Body:   verifyEmailRequest{Email: email, Code: code},
		Public: true,
	}
	if err := c.gw.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("verify email: %w", remapStatus(err, http.StatusBadRequest, ErrInvalidCode))
	}
	return nil
}

// ResendCode asks for a new verification code.
func (c *HTTPClient) ResendCode(ctx context.Context, email string) error {
	req := &Request{
		Method: http.MethodPost,
		Path:   "/auth/resend-verification-code",
		Body:   emailRequest{Email: email},
		Public: true,
	}
	if err := c.gw.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("resend code: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token pair. ErrInvalidCredentials on 401.
// Storing the pair is the caller's job.
func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (models.TokenPair, error) {
	req := &Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   credentialsRequest{Email: email, Password: string(password)},
		Public: true,
	}
	var pair models.TokenPair
	if err := c.gw.Do(ctx, req, &pair); err != nil {
		return models.TokenPair{}, fmt.Errorf("login: %w", remapStatus(err, http.StatusUnauthorized, ErrInvalidCredentials))
	}
	return pair, nil
}

// Refresh rotates the token pair. After success the old refresh token is
// dead. ErrRefreshInvalid on 401.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	req := &Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   refreshRequest{RefreshToken: refreshToken},
		Public: true,
	}
	var pair models.TokenPair
	if err := c.gw.Do(ctx, req, &pair); err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh: %w", remapStatus(err, http.StatusUnauthorized, ErrRefreshInvalid))
	}
	return pair, nil
}

// Me returns the authenticated user's id.
func (c *HTTPClient) Me(ctx context.Context) (int64, error) {
	var me meResponse
	if err := c.gw.Do(ctx, &Request{Method: http.MethodGet, Path: "/auth/me"}, &me); err != nil {
		return 0, fmt.Errorf("me: %w", err)
	}
	return me.ID, nil
}
