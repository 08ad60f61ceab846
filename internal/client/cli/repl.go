package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/investdesk/internal/client/client"
	"github.com/dmitrijs2005/investdesk/internal/client/services"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	state() services.State
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Sessions(ctx context.Context) error
	Revoke(ctx context.Context, arg string) error
}

// runREPL reads commands line by line until EOF, "exit" or "quit". Handler
// errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("investdesk (%s)> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText(a.state()))
		case "register":
			cmdErr = a.Register(ctx)
		case "verify":
			cmdErr = a.Verify(ctx)
		case "resend":
			cmdErr = a.Resend(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "sessions":
			cmdErr = a.Sessions(ctx)
		case "revoke":
			if len(args) != 1 {
				printlnFn("Usage: revoke <id>")
				continue
			}
			cmdErr = a.Revoke(ctx, args[0])
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
		}
	}
}

func helpText(s services.State) string {
	switch s {
	case services.Authenticated:
		return "Available commands: whoami, sessions, revoke <id>, status, logout, exit"
	case services.AwaitingVerification:
		return "Available commands: verify, resend, register, login, status, exit"
	default:
		return "Available commands: register, login, status, exit"
	}
}

// describe turns service errors into console messages.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, client.ErrConflict):
		return "this email is already registered"
	case errors.Is(err, client.ErrInvalidCode):
		return "the code is wrong or has expired, try 'resend'"
	case errors.Is(err, client.ErrRefreshInvalid):
		return "session expired, please log in again"
	case errors.Is(err, services.ErrNoPendingVerification):
		return "nothing to verify, register first"
	case errors.Is(err, client.ErrForbidden):
		return "not allowed: " + err.Error()
	case errors.Is(err, client.ErrNotFound):
		return "not found"
	default:
		return err.Error()
	}
}
