package unsplash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLinkHeader(t *testing.T) {
	links := ParseLinkHeader(`<https://api.example/x?page=2>; rel="next"`)
	assert.Equal(t, 1, len(links))
	assert.Equal(t, "https://api.example/x?page=2", links["next"])
}

func TestParseLinkHeaderMultiple(t *testing.T) {
	h := `<https://api.unsplash.com/photos?page=1>; rel="first", ` +
		`<https://api.unsplash.com/photos?page=1>; rel="prev", ` +
		`<https://api.unsplash.com/photos?page=3>; rel="next", ` +
		`<https://api.unsplash.com/photos?page=9>; rel="last"`
	links := ParseLinkHeader(h)
	assert.Equal(t, 4, len(links))
	assert.Equal(t, "https://api.unsplash.com/photos?page=3", links["next"])
	assert.Equal(t, "https://api.unsplash.com/photos?page=1", links["prev"])
	assert.Equal(t, "https://api.unsplash.com/photos?page=9", links["last"])
}

func TestParseLinkHeaderEmpty(t *testing.T) {
	links := ParseLinkHeader("")
	assert.NotNil(t, links)
	assert.Equal(t, 0, len(links))
}

func TestParseLinkHeaderMalformed(t *testing.T) {
	links := ParseLinkHeader(`garbage, <https://ok.example/p?page=2>; rel="next", no-brackets; rel="prev"`)
	assert.Equal(t, 1, len(links))
	assert.Equal(t, "https://ok.example/p?page=2", links["next"])
}
