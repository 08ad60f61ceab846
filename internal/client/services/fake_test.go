package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/investdesk/internal/client/client"
	"github.com/dmitrijs2005/investdesk/internal/client/credentials"
	"github.com/dmitrijs2005/investdesk/internal/client/models"
	"github.com/stretchr/testify/require"
)

func newCredentialStore(t *testing.T) *credentials.Store {
	t.Helper()
	db, err := credentials.OpenDatabase(context.Background(), filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := credentials.NewStore(db)
	require.NoError(t, s.Load(context.Background()))
	return s
}

type fakeIssuer struct {
	registerErr error
	verifyErr   error
	resendErr   error
	loginErr    error
	pair        models.TokenPair
	meID        int64
	meErr       error

	registered []string
	verified   []string
	resent     []string
	meCalls    int
}

var _ client.TokenIssuer = (*fakeIssuer)(nil)

func (f *fakeIssuer) Register(_ context.Context, email string, _ []byte) error {
	f.registered = append(f.registered, email)
	return f.registerErr
}

func (f *fakeIssuer) VerifyEmail(_ context.Context, email, code string) error {
	f.verified = append(f.verified, email+":"+code)
	return f.verifyErr
}

func (f *fakeIssuer) ResendCode(_ context.Context, email string) error {
	f.resent = append(f.resent, email)
	return f.resendErr
}

func (f *fakeIssuer) Login(context.Context, string, []byte) (models.TokenPair, error) {
	if f.loginErr != nil {
		return models.TokenPair{}, f.loginErr
	}
	return f.pair, nil
}

func (f *fakeIssuer) Refresh(context.Context, string) (models.TokenPair, error) {
	return models.TokenPair{}, client.ErrRefreshInvalid
}

func (f *fakeIssuer) Me(context.Context) (int64, error) {
	f.meCalls++
	return f.meID, f.meErr
}

type fakeDirectory struct {
	sessions  []models.Session
	listErr   error
	deleteErr error
	deleted   []int64
}

var _ client.SessionDirectory = (*fakeDirectory)(nil)

func (f *fakeDirectory) Sessions(context.Context) ([]models.Session, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sessions, nil
}

func (f *fakeDirectory) DeleteSession(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}
