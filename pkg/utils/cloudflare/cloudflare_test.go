package cloudflare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURLTrimsTrailingSlash(t *testing.T) {
	Init(Config{PublicURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com", publicURL())

	Init(Config{PublicURL: "https://cdn.example.com"})
	assert.Equal(t, "https://cdn.example.com", publicURL())
}
