package streamproxy

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProxyReference(t *testing.T) {
	m := NewManager("http://localhost:9000/api/stream")

	ref := m.CreateProxyReference("instagram", "https://cdn.example.com/thumb.jpg", "image.jpg")
	parsed, err := url.Parse(ref)
	require.NoError(t, err)
	id := parsed.Query().Get("id")
	require.NotEmpty(t, id)

	entry, ok := m.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, "instagram", entry.Service)
	assert.Equal(t, "https://cdn.example.com/thumb.jpg", entry.SourceURL)
	assert.Equal(t, "image.jpg", entry.Filename)

	_, ok = m.Lookup("nope")
	assert.False(t, ok)
}

func TestProxyReferencesAreUnique(t *testing.T) {
	m := NewManager("http://localhost:9000/api/stream")
	a := m.CreateProxyReference("instagram", "https://cdn.example.com/a.jpg", "image.jpg")
	b := m.CreateProxyReference("instagram", "https://cdn.example.com/a.jpg", "image.jpg")
	assert.NotEqual(t, a, b)
}
