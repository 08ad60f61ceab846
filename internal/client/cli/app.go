package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/investdesk/internal/client/client"
	"github.com/dmitrijs2005/investdesk/internal/client/config"
	"github.com/dmitrijs2005/investdesk/internal/client/credentials"
	"github.com/dmitrijs2005/investdesk/internal/client/models"
	"github.com/dmitrijs2005/investdesk/internal/client/services"
	"github.com/dmitrijs2005/investdesk/internal/logging"
)

type sessionService interface {
	List(ctx context.Context) ([]models.Session, error)
	Revoke(ctx context.Context, id int64) error
}

type App struct {
	config         *config.Config
	logger         logging.Logger
	authService    services.AuthService
	sessionService sessionService
	reader         *bufio.Reader
	out            io.Writer
	db             *sql.DB
}

// NewApp opens the credential store and wires the identity client around it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := credentials.OpenDatabase(ctx, c.CredentialsDSN)
	if err != nil {
		return nil, err
	}

	store := credentials.NewStore(db)
	if err := store.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		db:     db,
	}

	api := client.New(c.BaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger),
		client.WithSessionExpiredHandler(a.onSessionExpired),
	)

	a.authService = services.NewAuthService(api, store, logger)
	a.sessionService = services.NewSessionService(api)
	return a, nil
}

// Run blocks in the command loop until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn(fmt.Sprintf("investdesk console, server %s (type 'help' for commands)", a.config.BaseURL))
	runREPL(ctx, a, func() string { return a.state().String() }, a.reader)
}

func (a *App) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error(context.Background(), "failed to close credentials db", "error", err)
	}
}

func (a *App) state() services.State {
	return a.authService.State()
}

func (a *App) onSessionExpired(ctx context.Context) {
	printlnFn("\nYour session has expired. Please log in again.")
}
