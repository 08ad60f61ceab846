package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/investdesk/internal/client/services"
	"github.com/dmitrijs2005/investdesk/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, email, password); err != nil {
		return err
	}

	printlnFn("Registered. A verification code was sent to", email+"; enter it with 'verify'.")
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Enter verification code", a.out)
	if err != nil {
		return err
	}

	if err := a.authService.VerifyEmail(ctx, code); err != nil {
		return err
	}

	printlnFn("Email verified. You can now log in.")
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	if err := a.authService.ResendCode(ctx); err != nil {
		return err
	}
	printlnFn("A new code was sent to", a.authService.PendingEmail())
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}

	printlnFn("Logged in.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.authService.IsAuthenticated() {
		printlnFn("Not logged in.")
		return nil
	}
	if id, ok := a.authService.UserID(); ok {
		printlnFn(fmt.Sprintf("Logged in as user %d.", id))
		return nil
	}
	printlnFn("Logged in (user id unknown).")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	s := a.authService.State()
	msg := "State: " + s.String()
	if s == services.AwaitingVerification {
		msg += ", verifying " + a.authService.PendingEmail()
	}
	printlnFn(msg)
	printlnFn("Server:", a.config.BaseURL)
	return nil
}
