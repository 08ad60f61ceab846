package rest

import (
	"context"

	"github.com/dmitrijs2005/investdesk/internal/common"
	"github.com/dmitrijs2005/investdesk/internal/server/auth"
	"github.com/dmitrijs2005/investdesk/internal/server/models"
	"github.com/dmitrijs2005/investdesk/internal/server/services"
)

// fakeIdentity accepts the token "good" as user 7, session 3.
type fakeIdentity struct {
	registerErr error
	verifyErr   error
	loginErr    error
	refreshErr  error
	deleteErr   error
	sessions    []models.Session

	gotPassword string
	gotIP       string
	gotCode     string
	gotRefresh  string
	gotDelete   int64
	gotIdentity auth.Identity
}

var goodIdentity = auth.Identity{UserID: 7, SessionID: 3}

func (f *fakeIdentity) Register(_ context.Context, _ string, password []byte) error {
	f.gotPassword = string(password)
	return f.registerErr
}

func (f *fakeIdentity) VerifyEmail(_ context.Context, _, code string) error {
	f.gotCode = code
	return f.verifyErr
}

func (f *fakeIdentity) ResendCode(context.Context, string) error { return nil }

func (f *fakeIdentity) Login(_ context.Context, _ string, password []byte, ip string) (*services.TokenPair, error) {
	f.gotPassword = string(password)
	f.gotIP = ip
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (f *fakeIdentity) Refresh(_ context.Context, refreshToken string) (*services.TokenPair, error) {
	f.gotRefresh = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "at2", RefreshToken: "rt2"}, nil
}

func (f *fakeIdentity) Authenticate(_ context.Context, token string) (auth.Identity, error) {
	switch token {
	case "good":
		return goodIdentity, nil
	case "expired":
		return auth.Identity{}, common.ErrTokenExpired
	default:
		return auth.Identity{}, common.ErrInvalidToken
	}
}

func (f *fakeIdentity) ListSessions(_ context.Context, id auth.Identity) ([]models.Session, error) {
	f.gotIdentity = id
	return f.sessions, nil
}

func (f *fakeIdentity) DeleteSession(_ context.Context, id auth.Identity, sessionID int64) error {
	f.gotIdentity = id
	f.gotDelete = sessionID
	return f.deleteErr
}
