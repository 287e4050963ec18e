package canon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery(t *testing.T) {
	assert.Equal(t, "mountain lake", Query("  Mountain   Lake "))
	assert.Equal(t, "", Query("   "))
}

func TestCacheKeyIsStable(t *testing.T) {
	a := CacheKey("https://api.unsplash.com/photos?page=1&per_page=30")
	b := CacheKey("https://api.unsplash.com/photos?page=1&per_page=30")
	c := CacheKey("https://api.unsplash.com/photos?page=2&per_page=30")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "unsplash:page:"))
}
