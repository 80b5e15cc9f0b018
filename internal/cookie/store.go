package cookie

import (
	"net/http"
	"sync"
)

// Store is the cookie-store collaborator: resolvers fetch a platform's
// session handle from it and feed response headers back through Update.
type Store interface {
	// Get returns the session for a platform, or nil if there is none.
	Get(platform string) *Session
	// Update ingests response headers (cookie rotation) into the session.
	Update(s *Session, headers http.Header)
}

// MemoryStore keeps sessions in memory only. It is the default store and the
// one tests inject sessions into.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemoryStore(sessions ...*Session) *MemoryStore {
	store := &MemoryStore{sessions: make(map[string]*Session)}
	for _, s := range sessions {
		store.Put(s)
	}
	return store
}

func (m *MemoryStore) Get(platform string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[platform]
}

func (m *MemoryStore) Put(s *Session) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Platform] = s
}

func (m *MemoryStore) Update(s *Session, headers http.Header) {
	ApplyHeaders(s, headers)
}
