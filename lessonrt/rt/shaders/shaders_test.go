package shaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSources(t *testing.T) {
	names := Names()
	require.Len(t, names, 9)

	for _, name := range names {
		src, ok := Source(name)
		require.True(t, ok, name)
		assert.True(t, strings.Contains(src, "@vertex fn vs"), "%s has no vs entry point", name)
		assert.True(t, strings.Contains(src, "@fragment fn fs"), "%s has no fs entry point", name)
	}

	_, ok := Source("missing")
	assert.False(t, ok)
}

func TestValidateRejectsGarbage(t *testing.T) {
	err := Validate("broken", "@vertex fn vs( -> {")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shader broken")
}
