package instagram

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maxugly/cobalt/internal/cookie"
)

// fakeDoer scripts transport behaviour and records every outgoing request.
type fakeDoer struct {
	mu       sync.Mutex
	handler  func(req *http.Request) (*http.Response, error)
	requests []*http.Request
}

func (d *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.mu.Unlock()
	return d.handler(req)
}

// countPath returns how many recorded requests were for the exact URL path.
func (d *fakeDoer) countPath(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, req := range d.requests {
		if req.URL.Path == path {
			n++
		}
	}
	return n
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func headerResponse(status int, body string, headers map[string]string) *http.Response {
	resp := textResponse(status, body)
	for name, value := range headers {
		resp.Header.Set(name, value)
	}
	return resp
}

// embedPageHTML wraps a contextJSON payload the way the embed page inlines it.
func embedPageHTML(t *testing.T, contextJSON string) string {
	t.Helper()
	envelope, err := json.Marshal(map[string]string{"contextJSON": contextJSON})
	require.NoError(t, err)
	return `<html><script>handle(["init",[],[` + string(envelope) + `]],["tail",[],[]]);</script></html>`
}

const landingPageHTML = `<html><script>{"config":{"dtsg":{"token":"fb-dtsg-token-1","expiry":0}}}</script></html>`

func newTestResolver(doer *fakeDoer, sessions ...*cookie.Session) *Resolver {
	return New(Options{
		HTTPClient: doer,
		Cookies:    cookie.NewMemoryStore(sessions...),
	})
}

func testSession(values string) *cookie.Session {
	return cookie.ParseSession(Service, values)
}
