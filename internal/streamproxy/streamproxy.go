// Package streamproxy issues opaque proxy references for upstream media that
// cannot be embedded directly, e.g. Instagram thumbnails served with
// Cross-Origin-Resource-Policy: same-origin.
package streamproxy

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/maxugly/cobalt/internal/sync_"
)

// Factory is the stream-proxy collaborator interface resolvers depend on.
type Factory interface {
	CreateProxyReference(service string, sourceURL string, filename string) string
}

// An Entry is the registered upstream target behind one proxy reference.
type Entry struct {
	Service   string
	SourceURL string
	Filename  string
	CreatedAt time.Time
}

// Manager hands out proxy URLs backed by an in-memory registry. The piping
// side looks entries up by id when a proxied URL is requested.
type Manager struct {
	baseURL string
	entries *sync_.RWMutexed[map[string]Entry]
}

func NewManager(baseURL string) *Manager {
	return &Manager{
		baseURL: baseURL,
		entries: sync_.NewRWMutexed(make(map[string]Entry)),
	}
}

func (m *Manager) CreateProxyReference(service string, sourceURL string, filename string) string {
	id := uuid.NewString()
	entry := Entry{
		Service:   service,
		SourceURL: sourceURL,
		Filename:  filename,
		CreatedAt: time.Now(),
	}
	_ = m.entries.Locked(func(entries map[string]Entry) error {
		entries[id] = entry
		return nil
	})
	query := url.Values{}
	query.Set("id", id)
	return m.baseURL + "?" + query.Encode()
}

// Lookup returns the entry behind a proxy reference id.
func (m *Manager) Lookup(id string) (entry Entry, ok bool) {
	_ = m.entries.RLocked(func(entries map[string]Entry) error {
		entry, ok = entries[id]
		return nil
	})
	return entry, ok
}
