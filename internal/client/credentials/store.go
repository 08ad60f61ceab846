// Package credentials is the client's credential store: the current access
// token, refresh token and user id, held in memory and mirrored to the local
// SQLite database so they survive a restart.
//
// Lifecycle: open the database, construct with NewStore, call Load once to
// pick up persisted values, and Clear on logout. Every mutation is written to
// the database before the in-memory copy changes, so a new process always
// observes the last committed state.
package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/investdesk/internal/client/models"
	"github.com/dmitrijs2005/investdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/investdesk/internal/dbx"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserID       = "user_id"
)

// Store is safe for concurrent use.
type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	creds models.Credentials
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load replaces the in-memory state with what is persisted.
func (s *Store) Load(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(s.db)

	access, err := repo.Get(ctx, keyAccessToken)
	if err != nil {
		return err
	}
	refresh, err := repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return err
	}
	rawUserID, err := repo.Get(ctx, keyUserID)
	if err != nil {
		return err
	}

	var userID int64
	if len(rawUserID) > 0 {
		userID, err = strconv.ParseInt(string(rawUserID), 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt stored user id %q: %w", rawUserID, err)
		}
	}

	creds := models.Credentials{AccessToken: string(access), RefreshToken: string(refresh), UserID: userID}
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		creds.AccessToken, creds.RefreshToken = "", ""
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Tokens returns the current access and refresh tokens exactly as stored.
func (s *Store) Tokens() (accessToken, refreshToken string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken, s.creds.RefreshToken
}

func (s *Store) Credentials() models.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

func (s *Store) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.UserID, s.creds.UserID != 0
}

// IsAuthenticated is a presence check only: it says nothing about whether
// the access token is still accepted by the server.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken != ""
}

// SetTokens overwrites both tokens in one transaction.
func (s *Store) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, keyRefreshToken, []byte(refreshToken))
	})
	if err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}

	s.creds.AccessToken = accessToken
	s.creds.RefreshToken = refreshToken
	return nil
}

func (s *Store) SetUserID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo := metadata.NewSQLiteRepository(s.db)
	if err := repo.Set(ctx, keyUserID, []byte(strconv.FormatInt(id, 10))); err != nil {
		return fmt.Errorf("persist user id: %w", err)
	}

	s.creds.UserID = id
	return nil
}

// Clear forgets tokens and user id. The in-memory state is always cleared,
// even when the database write fails; that error is still returned.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = models.Credentials{}

	// The metadata table holds nothing but credentials.
	if err := metadata.NewSQLiteRepository(s.db).Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted credentials: %w", err)
	}
	return nil
}
