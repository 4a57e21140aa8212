package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVideoCallLink(t *testing.T) {
	link, err := NewVideoCallLink()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(link, "https://meet.jit.si/heartcare-"))

	token := strings.TrimPrefix(link, "https://meet.jit.si/heartcare-")
	assert.NotEmpty(t, token)
	// 8 random bytes, unpadded url-safe base64
	assert.Len(t, token, 11)
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
}

func TestNewVideoCallLinkUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		link, err := NewVideoCallLink()
		require.NoError(t, err)
		assert.False(t, seen[link], "duplicate link generated: %s", link)
		seen[link] = true
	}
}

func TestIsVideoCallLink(t *testing.T) {
	link, err := NewVideoCallLink()
	require.NoError(t, err)

	assert.True(t, IsVideoCallLink(link))
	assert.False(t, IsVideoCallLink("https://example.com/meeting"))
	assert.False(t, IsVideoCallLink(""))
}
