// Package server wires the identity service: PostgreSQL storage, migrations
// and the HTTP API, and runs it until SIGINT or SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/investdesk/internal/logging"
	"github.com/dmitrijs2005/investdesk/internal/server/config"
	"github.com/dmitrijs2005/investdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/investdesk/internal/server/rest"
	"github.com/dmitrijs2005/investdesk/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	identity := services.NewIdentityService(db, rm, services.LogCodeSender{Logger: logger}, logger, c)
	if c.DemoMode {
		if err := identity.SeedDemoUser(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	server := rest.NewServer(c.EndpointAddr, c.BasePath, logger, identity)

	return &App{config: c, logger: logger, db: db, server: server}, nil
}

// Run serves until a termination signal arrives or the server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close() {
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "failed to close db", "error", err)
	}
}
