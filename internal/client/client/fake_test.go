package client

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/investdesk/internal/client/models"
)

type memStore struct {
	mu           sync.Mutex
	access       string
	refresh      string
	clears       int
	setTokensErr error
	// afterRead, when set, runs once after the next Tokens read, before the
	// values are returned.
	afterRead func()
}

func newMemStore(access, refresh string) *memStore {
	return &memStore{access: access, refresh: refresh}
}

func (s *memStore) Tokens() (string, string) {
	s.mu.Lock()
	access, refresh, hook := s.access, s.refresh, s.afterRead
	s.afterRead = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return access, refresh
}

func (s *memStore) pauseNextRead(paused chan<- struct{}, resume <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterRead = func() {
		close(paused)
		<-resume
	}
}

func (s *memStore) SetTokens(_ context.Context, a, r string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setTokensErr != nil {
		return s.setTokensErr
	}
	s.access, s.refresh = a, r
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh = "", ""
	s.clears++
	return nil
}

func (s *memStore) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

type fakeRefresher struct {
	calls   atomic.Int32
	gotRT   atomic.Value
	release chan struct{}
	pair    models.TokenPair
	err     error
}

func (f *fakeRefresher) Refresh(ctx context.Context, rt string) (models.TokenPair, error) {
	f.calls.Add(1)
	f.gotRT.Store(rt)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return models.TokenPair{}, ctx.Err()
		}
	}
	if f.err != nil {
		return models.TokenPair{}, f.err
	}
	return f.pair, nil
}
