package cookie

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSession(t *testing.T) {
	s := ParseSession("instagram", "csrftoken=abc; sessionid=xyz;")
	assert.Equal(t, "abc", s.Value("csrftoken"))
	assert.Equal(t, "xyz", s.Value("sessionid"))
	assert.Equal(t, "csrftoken=abc; sessionid=xyz", s.CookieHeader())
}

func TestApplyHeaders(t *testing.T) {
	s := ParseSession("instagram", "csrftoken=abc")

	headers := http.Header{}
	headers.Add("Set-Cookie", "csrftoken=def; Path=/; Secure")
	assert.True(t, ApplyHeaders(s, headers))
	assert.Equal(t, "def", s.Value("csrftoken"))

	// Same value again: nothing changed.
	assert.False(t, ApplyHeaders(s, headers))

	assert.False(t, ApplyHeaders(nil, headers))
	assert.False(t, ApplyHeaders(s, nil))
}

func TestWWWClaim(t *testing.T) {
	s := NewSession("instagram", nil)
	assert.Equal(t, "", s.WWWClaim())
	s.SetWWWClaim("hmac.AR0")
	assert.Equal(t, "hmac.AR0", s.WWWClaim())
}

func TestMemoryStore(t *testing.T) {
	s := ParseSession("instagram", "sessionid=1")
	store := NewMemoryStore(s)
	assert.Same(t, s, store.Get("instagram"))
	assert.Nil(t, store.Get("youtube"))

	headers := http.Header{}
	headers.Add("Set-Cookie", "mid=xyz")
	store.Update(s, headers)
	assert.Equal(t, "xyz", s.Value("mid"))
}
