package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/investdesk/internal/client/client"
	"github.com/dmitrijs2005/investdesk/internal/client/services"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	st services.State

	calls     []string
	revokeArg string
	loginErr  error
}

func (f *fakeExec) state() services.State { return f.st }
func (f *fakeExec) Register(context.Context) error {
	f.calls = append(f.calls, "register")
	f.st = services.AwaitingVerification
	return nil
}
func (f *fakeExec) Verify(context.Context) error {
	f.calls = append(f.calls, "verify")
	f.st = services.Anonymous
	return nil
}
func (f *fakeExec) Resend(context.Context) error { f.calls = append(f.calls, "resend"); return nil }
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	if f.loginErr != nil {
		return f.loginErr
	}
	f.st = services.Authenticated
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.st = services.Anonymous
	return nil
}
func (f *fakeExec) WhoAmI(context.Context) error   { f.calls = append(f.calls, "whoami"); return nil }
func (f *fakeExec) Status(context.Context) error   { f.calls = append(f.calls, "status"); return nil }
func (f *fakeExec) Sessions(context.Context) error { f.calls = append(f.calls, "sessions"); return nil }
func (f *fakeExec) Revoke(_ context.Context, arg string) error {
	f.calls = append(f.calls, "revoke")
	f.revokeArg = arg
	return nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"register",
		"verify",
		"resend",
		"",
		"login",
		"whoami",
		"sessions",
		"revoke 12",
		"revoke",
		"status",
		"foobar",
		"logout",
		"exit",
		"login",
	}, "\n")

	f := &fakeExec{}
	runREPL(context.Background(), f, func() string { return f.st.String() }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"register", "verify", "resend", "login", "whoami", "sessions", "revoke", "status", "logout",
	}, f.calls)
	assert.Equal(t, "12", f.revokeArg)
	assert.Contains(t, *out, "Usage: revoke <id>")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
	assert.Contains(t, *out, "investdesk (authenticated)> ")
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	out := captureOutput(t)

	f := &fakeExec{loginErr: fmt.Errorf("login: %w", client.ErrInvalidCredentials)}
	runREPL(context.Background(), f, func() string { return f.st.String() },
		bufio.NewReader(strings.NewReader("login\nstatus")))

	assert.Equal(t, []string{"login", "status"}, f.calls)
	assert.Contains(t, *out, "Error: invalid email or password")
}

func TestRunREPL_HelpFollowsState(t *testing.T) {
	out := captureOutput(t)

	f := &fakeExec{}
	runREPL(context.Background(), f, func() string { return f.st.String() },
		bufio.NewReader(strings.NewReader("help\nlogin\nhelp\n")))

	assert.Contains(t, *out, helpText(services.Anonymous))
	assert.Contains(t, *out, helpText(services.Authenticated))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("register: %w", client.ErrConflict), "this email is already registered"},
		{client.ErrInvalidCode, "the code is wrong or has expired, try 'resend'"},
		{client.ErrRefreshInvalid, "session expired, please log in again"},
		{services.ErrNoPendingVerification, "nothing to verify, register first"},
		{client.ErrNotFound, "not found"},
		{fmt.Errorf("%w: cannot connect to http://x", client.ErrUnreachable), "server unreachable: cannot connect to http://x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describe(tt.err))
	}
}
