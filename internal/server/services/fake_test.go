package services

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/common"
	"github.com/dmitrijs2005/investdesk/internal/dbx"
	"github.com/dmitrijs2005/investdesk/internal/server/models"
	"github.com/dmitrijs2005/investdesk/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/investdesk/internal/server/repositories/users"
	"github.com/dmitrijs2005/investdesk/internal/server/repositories/verificationcodes"
)

// memDB is an in-memory stand-in for the three PostgreSQL repositories.
// Transactions are driven through sqlmock; the data lives here.
type memDB struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*models.User
	sessions map[int64]*models.Session
	codes    map[int64]*models.VerificationCode

	createSessionErr error
	rotateConflict   bool
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[int64]*models.User{},
		sessions: map[int64]*models.Session{},
		codes:    map[int64]*models.VerificationCode{},
	}
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

type fakeRepoManager struct{ db *memDB }

func (f fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f fakeRepoManager) Users(dbx.DBTX) users.Repository             { return memUsers{f.db} }
func (f fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository       { return memSessions{f.db} }
func (f fakeRepoManager) VerificationCodes(dbx.DBTX) verificationcodes.Repository {
	return memCodes{f.db}
}

type memUsers struct{ *memDB }

func (m memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = m.id()
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return u, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) MarkVerified(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Verified = true
	return nil
}

type memSessions struct{ *memDB }

func (m memSessions) Create(_ context.Context, s *models.Session) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createSessionErr != nil {
		return nil, m.createSessionErr
	}
	s.ID = m.id()
	s.CreatedAt = time.Now()
	cp := *s
	m.sessions[s.ID] = &cp
	return s, nil
}

func (m memSessions) FindByTokenHash(_ context.Context, hash string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.RefreshTokenHash == hash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m memSessions) Get(_ context.Context, id int64) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (m memSessions) Rotate(_ context.Context, id int64, oldHash, newHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.RefreshTokenHash != oldHash || m.rotateConflict {
		return common.ErrorNotFound
	}
	s.RefreshTokenHash = newHash
	s.ExpiresAt = expiresAt
	return nil
}

func (m memSessions) ListByUser(_ context.Context, userID int64) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	slices.SortFunc(out, func(a, b models.Session) int { return int(b.ID - a.ID) })
	return out, nil
}

func (m memSessions) Delete(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return common.ErrorNotFound
	}
	delete(m.sessions, id)
	return nil
}

type memCodes struct{ *memDB }

func (m memCodes) Upsert(_ context.Context, c *models.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.codes[c.UserID] = &cp
	return nil
}

func (m memCodes) Find(_ context.Context, userID int64) (*models.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCodes) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, userID)
	return nil
}

type fakeSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (f *fakeSender) SendVerificationCode(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = map[string]string{}
	}
	f.codes[email] = code
	return nil
}

func (f *fakeSender) last(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}
