package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/client/client"
	"github.com/dmitrijs2005/investdesk/internal/client/config"
	"github.com/dmitrijs2005/investdesk/internal/client/models"
	"github.com/dmitrijs2005/investdesk/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubInputs(t *testing.T, text string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return text, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	st      services.State
	pending string
	userID  int64
	hasID   bool

	gotEmail string
	gotPass  []byte
	gotCode  string

	registerErr error
	verifyErr   error
	loginErr    error
	logoutErr   error
}

func (f *fakeAuth) State() services.State { return f.st }
func (f *fakeAuth) PendingEmail() string  { return f.pending }
func (f *fakeAuth) IsAuthenticated() bool { return f.st == services.Authenticated }
func (f *fakeAuth) UserID() (int64, bool) { return f.userID, f.hasID }

func (f *fakeAuth) Register(_ context.Context, email string, pw []byte) error {
	f.gotEmail, f.gotPass = email, append([]byte(nil), pw...)
	if f.registerErr != nil {
		return f.registerErr
	}
	f.st, f.pending = services.AwaitingVerification, email
	return nil
}

func (f *fakeAuth) VerifyEmail(_ context.Context, code string) error {
	f.gotCode = code
	if f.verifyErr != nil {
		return f.verifyErr
	}
	f.st, f.pending = services.Anonymous, ""
	return nil
}

func (f *fakeAuth) ResendCode(context.Context) error { return nil }

func (f *fakeAuth) Login(_ context.Context, email string, pw []byte) error {
	f.gotEmail, f.gotPass = email, append([]byte(nil), pw...)
	if f.loginErr != nil {
		return f.loginErr
	}
	f.st = services.Authenticated
	return nil
}

func (f *fakeAuth) Logout(context.Context) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.st = services.Anonymous
	return nil
}

type fakeSessions struct {
	list      []models.Session
	revokeErr error
	revoked   []int64
}

func (f *fakeSessions) List(context.Context) ([]models.Session, error) { return f.list, nil }
func (f *fakeSessions) Revoke(_ context.Context, id int64) error {
	f.revoked = append(f.revoked, id)
	return f.revokeErr
}

func newTestApp(auth *fakeAuth, sess *fakeSessions) *App {
	return &App{
		config:         &config.Config{BaseURL: "http://localhost:3000/rest"},
		authService:    auth,
		sessionService: sess,
		out:            io.Discard,
	}
}

func TestApp_RegisterWipesPassword(t *testing.T) {
	captureOutput(t)
	pw := []byte("secret")
	stubInputs(t, "alice@example.org", pw)

	f := &fakeAuth{}
	a := newTestApp(f, nil)

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "alice@example.org", f.gotEmail)
	assert.Equal(t, []byte("secret"), f.gotPass)
	assert.Equal(t, make([]byte, len(pw)), pw)
	assert.Equal(t, services.AwaitingVerification, a.state())
}

func TestApp_VerifyPassesCode(t *testing.T) {
	captureOutput(t)
	stubInputs(t, "123456", nil)

	f := &fakeAuth{st: services.AwaitingVerification, pending: "a@b.c"}
	a := newTestApp(f, nil)

	require.NoError(t, a.Verify(context.Background()))
	assert.Equal(t, "123456", f.gotCode)
	assert.Equal(t, services.Anonymous, a.state())
}

func TestApp_LoginError(t *testing.T) {
	captureOutput(t)
	stubInputs(t, "a@b.c", []byte("bad"))

	f := &fakeAuth{loginErr: client.ErrInvalidCredentials}
	a := newTestApp(f, nil)

	require.ErrorIs(t, a.Login(context.Background()), client.ErrInvalidCredentials)
	assert.Equal(t, services.Anonymous, a.state())
}

func TestApp_LogoutErrorPropagates(t *testing.T) {
	captureOutput(t)
	a := newTestApp(&fakeAuth{st: services.Authenticated, logoutErr: errors.New("disk full")}, nil)

	require.Error(t, a.Logout(context.Background()))
}

func TestApp_WhoAmI(t *testing.T) {
	tests := []struct {
		name string
		auth *fakeAuth
		want string
	}{
		{"anonymous", &fakeAuth{}, "Not logged in."},
		{"known id", &fakeAuth{st: services.Authenticated, userID: 42, hasID: true}, "Logged in as user 42."},
		{"unknown id", &fakeAuth{st: services.Authenticated}, "Logged in (user id unknown)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t)
			require.NoError(t, newTestApp(tt.auth, nil).WhoAmI(context.Background()))
			assert.Equal(t, []string{tt.want}, *out)
		})
	}
}

func TestApp_SessionsAndRevoke(t *testing.T) {
	out := captureOutput(t)

	riga := "Riga"
	sess := &fakeSessions{list: []models.Session{
		{ID: 1, CreatedAt: time.Now(), IP: "10.0.0.1", Location: &riga, IsCurrent: true},
		{ID: 2, CreatedAt: time.Now(), IP: "10.0.0.2"},
	}}
	a := newTestApp(&fakeAuth{st: services.Authenticated}, sess)

	require.NoError(t, a.Sessions(context.Background()))
	require.Len(t, *out, 1)
	assert.Contains(t, (*out)[0], "10.0.0.1")
	assert.Contains(t, (*out)[0], "Riga")
	assert.Contains(t, (*out)[0], "(current)")

	require.NoError(t, a.Revoke(context.Background(), "2"))
	assert.Equal(t, []int64{2}, sess.revoked)

	require.Error(t, a.Revoke(context.Background(), "abc"))
	assert.Equal(t, []int64{2}, sess.revoked)

	sess.revokeErr = client.ErrForbidden
	require.ErrorIs(t, a.Revoke(context.Background(), "1"), client.ErrForbidden)
}

func TestFormatSessions_Empty(t *testing.T) {
	assert.Equal(t, "No sessions.", formatSessions(nil))
}

func TestApp_Status(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(&fakeAuth{st: services.AwaitingVerification, pending: "a@b.c"}, nil)

	require.NoError(t, a.Status(context.Background()))
	assert.Equal(t, []string{
		"State: awaiting-verification, verifying a@b.c",
		"Server: http://localhost:3000/rest",
	}, *out)
}
