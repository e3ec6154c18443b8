package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutBounds(t *testing.T) {
	l, err := New([][]TileKind{
		{Floor, Floor, Wall},
		{Floor, Hole, Floor},
	})
	require.NoError(t, err)

	assert.True(t, l.IsInBounds(0, 0))
	assert.True(t, l.IsInBounds(2, 1))
	assert.False(t, l.IsInBounds(3, 0))
	assert.False(t, l.IsInBounds(0, -1))

	assert.Equal(t, Wall, l.TileKind(2, 0))
	assert.Equal(t, OutOfBounds, l.TileKind(5, 5))
	assert.True(t, l.IsValidTerrain(0, 0))
	assert.False(t, l.IsValidTerrain(1, 1)) // Hole
	assert.False(t, l.IsValidTerrain(2, 0)) // Wall
}

func TestNewRejectsRaggedRows(t *testing.T) {
	_, err := New([][]TileKind{
		{Floor, Floor},
		{Floor},
	})
	assert.Error(t, err)
}

func TestFallback1x1Wall(t *testing.T) {
	l := Fallback1x1Wall()
	assert.Equal(t, 1, l.Cols)
	assert.Equal(t, 1, l.Rows)
	assert.False(t, l.IsValidTerrain(0, 0))
}

func TestWireRoundTrip(t *testing.T) {
	l, err := New([][]TileKind{
		{Floor, Wall, AltFloor, Hole},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(l.ToWire())
	require.NoError(t, err)
	assert.JSONEq(t, `[[0,1,2,"X"]]`, string(raw))

	var wire [][]WireCell
	require.NoError(t, json.Unmarshal(raw, &wire))
	back, err := FromWire(wire)
	require.NoError(t, err)
	assert.Equal(t, l, back)
}
