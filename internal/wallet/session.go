package wallet

import (
	"context"
	"sync"

	"github.com/vietddude/suiwork/internal/core/domain"
)

// SessionStore persists the wallet session between runs. Every session
// transition is written through Save.
type SessionStore interface {
	Save(ctx context.Context, s domain.Session) error
	Load(ctx context.Context) (domain.Session, bool, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps the session in process.
type MemoryStore struct {
	mu      sync.Mutex
	session domain.Session
	ok      bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Save(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session, s.ok = sess, true
	return nil
}

func (s *MemoryStore) Load(context.Context) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.ok, nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session, s.ok = domain.Session{}, false
	return nil
}
