package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id" validate:"required"`
}

type request struct {
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
	Items []item `json:"items" validate:"dive"`
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(request{Kind: "a", Items: []item{{ID: "x"}}}))
	assert.NoError(t, Struct(request{}))
}

func TestStructCollectsFieldPaths(t *testing.T) {
	err := Struct(request{Kind: "c", Items: []item{{ID: "x"}, {}}})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("kind"))
	assert.True(t, ve.Has("items[1].id"))
	assert.Equal(t, "is required", ve.Fields["items[1].id"])
	assert.Equal(t, "items[1].id:is required; kind:must be one of [a b]", ve.Error())
}
