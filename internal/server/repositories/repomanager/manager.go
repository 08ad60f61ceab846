package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/investdesk/internal/dbx"
	"github.com/dmitrijs2005/investdesk/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/investdesk/internal/server/repositories/users"
	"github.com/dmitrijs2005/investdesk/internal/server/repositories/verificationcodes"
)

// RepositoryManager binds repositories to a *sql.DB or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	VerificationCodes(db dbx.DBTX) verificationcodes.Repository
}
