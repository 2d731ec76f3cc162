package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndValidate(t *testing.T) {
	id := NewTransformerID()
	assert.True(t, strings.HasPrefix(id, "tfm_"))
	require.NoError(t, Validate(id, PrefixTransformer))
	assert.Error(t, Validate(id, PrefixSession))
	assert.Error(t, Validate("not an id", PrefixSession))
	assert.NotEqual(t, id, NewTransformerID())
}
