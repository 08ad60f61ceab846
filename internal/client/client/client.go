package client

import (
	"context"

	"github.com/dmitrijs2005/investdesk/internal/client/models"
)

// TokenIssuer covers the credential lifecycle calls.
type TokenIssuer interface {
	Register(ctx context.Context, email string, password []byte) error
	VerifyEmail(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) error
	Login(ctx context.Context, email string, password []byte) (models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
	Me(ctx context.Context) (int64, error)
}

// SessionDirectory lists and revokes the caller's sessions.
type SessionDirectory interface {
	Sessions(ctx context.Context) ([]models.Session, error)
	DeleteSession(ctx context.Context, id int64) error
}

// Client is the whole identity service API.
type Client interface {
	TokenIssuer
	SessionDirectory
}

// HTTPClient implements Client over HTTP/JSON. All calls go through one
// Gateway, which also uses the client's own Refresh to recover from 401s.
type HTTPClient struct {
	gw *Gateway
}

var _ Client = (*HTTPClient)(nil)

// New builds the client and its gateway against baseURL.
func New(baseURL string, store CredentialStore, opts ...GatewayOption) *HTTPClient {
	c := &HTTPClient{}
	c.gw = NewGateway(baseURL, store, c, opts...)
	return c
}

// Gateway exposes the request gateway for other authenticated calls.
func (c *HTTPClient) Gateway() *Gateway {
	return c.gw
}
