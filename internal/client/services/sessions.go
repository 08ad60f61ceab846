package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/investdesk/internal/client/client"
	"github.com/dmitrijs2005/investdesk/internal/client/models"
)

// SessionService keeps the last fetched session list and revokes entries
// from it.
type SessionService struct {
	dir client.SessionDirectory

	mu       sync.Mutex
	sessions []models.Session
}

func NewSessionService(dir client.SessionDirectory) *SessionService {
	return &SessionService{dir: dir}
}

// List fetches the sessions and replaces the snapshot. On error the
// snapshot is kept.
func (s *SessionService) List(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.dir.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions = slices.Clone(sessions)
	s.mu.Unlock()

	return slices.Clone(sessions), nil
}

// Revoke deletes another device's session. The current session is refused
// without a network call.
func (s *SessionService) Revoke(ctx context.Context, id int64) error {
	s.mu.Lock()
	current := slices.ContainsFunc(s.sessions, func(ss models.Session) bool {
		return ss.ID == id && ss.IsCurrent
	})
	s.mu.Unlock()

	if current {
		return fmt.Errorf("revoke session %d: %w: cannot revoke the current session", id, client.ErrForbidden)
	}

	if err := s.dir.DeleteSession(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions = slices.DeleteFunc(s.sessions, func(ss models.Session) bool { return ss.ID == id })
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the last fetched list.
func (s *SessionService) Snapshot() []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sessions)
}
