package resolvers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxugly/cobalt"
)

func TestRegisterAddsAllResolvers(t *testing.T) {
	var reg cobalt.ResolverRegistry
	require.NoError(t, Register(&reg, Options{}))
	assert.Equal(t, []string{"instagram", "youtube"}, reg.List())
}

func TestDefaultRegistryPopulatedOnImport(t *testing.T) {
	assert.Contains(t, cobalt.DefaultResolverRegistry.List(), "instagram")
	assert.Contains(t, cobalt.DefaultResolverRegistry.List(), "youtube")
}

func TestUnmatchedRequestIsUnsupported(t *testing.T) {
	var reg cobalt.ResolverRegistry
	require.NoError(t, Register(&reg, Options{}))

	_, err := reg.Resolve(context.Background(), cobalt.Request{})
	resErr, ok := cobalt.AsResolutionError(err)
	require.True(t, ok)
	assert.Equal(t, cobalt.ErrKindUnsupported, resErr.Kind)
}
