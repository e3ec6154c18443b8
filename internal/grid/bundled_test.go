package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayoutKnownRoom(t *testing.T) {
	l, ok := DefaultLayout("main_lobby")
	require.True(t, ok)
	assert.Equal(t, 16, l.Cols)
	assert.Equal(t, 8, l.Rows)
	assert.True(t, l.IsValidTerrain(1, 1))
	assert.False(t, l.IsValidTerrain(0, 0))
}

func TestDefaultLayoutUnknownRoom(t *testing.T) {
	_, ok := DefaultLayout("does_not_exist")
	assert.False(t, ok)
}
