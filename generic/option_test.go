package generic

import (
	"errors"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestOption(t *testing.T) {
	assert := assert_.New(t)

	some := Some(42)
	none := None[int]()

	assert.True(some.IsSome())
	assert.False(some.IsNone())
	assert.False(none.IsSome())
	assert.True(none.IsNone())

	assert.Equal(42, some.Unwrap())
	assert.Panics(func() { none.Unwrap() })

	assert.Equal(42, some.UnwrapOr(7))
	assert.Equal(7, none.UnwrapOr(7))
	assert.Equal(0, none.UnwrapOrDefault())

	err := errors.New("nothing here")
	assert.True(some.OkOr(err).IsOk())
	assert.Equal(err, none.OkOr(err).UnwrapErr())
}
