// Package cookie models authenticated platform sessions as mutable handles
// owned by a Store. Resolvers read session values and the request adapter
// writes updated claim headers back; neither takes ownership.
package cookie

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/r3labs/diff/v3"
)

// A Session is one platform's cookie state. It is shared by reference across
// concurrent resolutions, so all access goes through the mutex.
type Session struct {
	Platform string

	mu       sync.Mutex
	values   map[string]string
	wwwClaim string
}

func NewSession(platform string, values map[string]string) *Session {
	s := &Session{
		Platform: platform,
		values:   make(map[string]string, len(values)),
	}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// ParseSession builds a Session from a raw "k=v; k2=v2" cookie header line.
func ParseSession(platform string, header string) *Session {
	values := make(map[string]string)
	for _, pair := range strings.Split(header, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		values[name] = value
	}
	return NewSession(platform, values)
}

func (s *Session) Value(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name]
}

func (s *Session) SetValue(name string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Values returns a copy of the session's cookie values.
func (s *Session) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[string]string, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return values
}

// WWWClaim is the last claim value the upstream server issued, or "" when the
// session has never seen one.
func (s *Session) WWWClaim() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wwwClaim
}

func (s *Session) SetWWWClaim(claim string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wwwClaim = claim
}

// CookieHeader serializes the session values as a Cookie header, with
// deterministic ordering.
func (s *Session) CookieHeader() string {
	values := s.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+values[name])
	}
	return strings.Join(pairs, "; ")
}

// ApplyHeaders ingests any Set-Cookie response headers into the session and
// reports whether the session's values actually changed.
func ApplyHeaders(s *Session, headers http.Header) bool {
	if s == nil || headers == nil {
		return false
	}
	before := s.Values()
	resp := http.Response{Header: headers}
	for _, c := range resp.Cookies() {
		if c.Value == "" {
			continue
		}
		s.SetValue(c.Name, c.Value)
	}
	changes, err := diff.Diff(before, s.Values())
	return err == nil && len(changes) > 0
}
