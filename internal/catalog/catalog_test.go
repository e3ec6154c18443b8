package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundledEmoteCatalog(t *testing.T) {
	c, err := LoadBundledEmoteCatalog()
	require.NoError(t, err)

	wave, ok := c.Lookup("wave")
	require.True(t, ok)
	assert.Equal(t, 2.5, wave.DurationSeconds)

	_, ok = c.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestLoadBundledShopCatalog(t *testing.T) {
	c, err := LoadBundledShopCatalog()
	require.NoError(t, err)

	price, ok := c.Price("chair_basic")
	require.True(t, ok)
	assert.Equal(t, 15, price)

	_, ok = c.Price("nonexistent")
	assert.False(t, ok)
}
