package cobalt

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubResolver(name string, matches bool) Resolver {
	return Resolver{
		Name: name,
		Match: func(req Request) (ResolveFunc, error) {
			if !matches {
				return nil, fmt.Errorf("%v does not match", name)
			}
			return func(ctx context.Context, req Request) (Descriptor, error) {
				return Single{URL: "resolved-by-" + name}, nil
			}, nil
		},
	}
}

func TestRegistryAddValidation(t *testing.T) {
	var reg ResolverRegistry
	assert.ErrorIs(t, reg.Add(Resolver{}), ErrInvalidResolver)
	assert.ErrorIs(t, reg.Add(Resolver{Name: "a"}), ErrInvalidResolver)
	require.NoError(t, reg.Add(stubResolver("a", true)))
	assert.ErrorIs(t, reg.Add(stubResolver("a", true)), ErrDuplicateResolver)
}

func TestRegistryPriorityOrder(t *testing.T) {
	var reg ResolverRegistry
	require.NoError(t, reg.Add(stubResolver("low", true).WithPriority(PriorityLowest)))
	require.NoError(t, reg.Add(stubResolver("high", true).WithPriority(PriorityHighest)))
	require.NoError(t, reg.Add(stubResolver("mid", true)))
	assert.Equal(t, []string{"high", "mid", "low"}, reg.List())

	desc, err := reg.Resolve(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "resolved-by-high", desc.(Single).URL)
}

func TestRegistrySkipsNonMatching(t *testing.T) {
	var reg ResolverRegistry
	require.NoError(t, reg.Add(stubResolver("never", false).WithPriority(PriorityHighest)))
	require.NoError(t, reg.Add(stubResolver("always", true)))

	desc, err := reg.Resolve(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "resolved-by-always", desc.(Single).URL)
}

func TestRegistryNoMatchIsUnsupported(t *testing.T) {
	var reg ResolverRegistry
	require.NoError(t, reg.Add(stubResolver("never", false)))

	_, err := reg.Resolve(context.Background(), Request{})
	resErr, ok := AsResolutionError(err)
	require.True(t, ok)
	assert.Equal(t, ErrKindUnsupported, resErr.Kind)
}

func TestRegistryResolveWith(t *testing.T) {
	var reg ResolverRegistry
	require.NoError(t, reg.Add(stubResolver("a", true)))

	desc, err := reg.ResolveWith(context.Background(), "a", Request{})
	require.NoError(t, err)
	assert.Equal(t, "resolved-by-a", desc.(Single).URL)

	_, err = reg.ResolveWith(context.Background(), "missing", Request{})
	assert.ErrorIs(t, err, ErrUnknownResolver)
}
