package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// videoLinkPrefix is the fixed template every generated call link uses. The
// link represents a call session; nothing is provisioned against a real
// video service.
const videoLinkPrefix = "https://meet.jit.si/heartcare-"

const videoTokenBytes = 8

// NewVideoCallLink generates an opaque video call link with a URL-safe
// random token.
func NewVideoCallLink() (string, error) {
	buf := make([]byte, videoTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate video token: %w", err)
	}
	return videoLinkPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsVideoCallLink reports whether s matches the generated link template.
func IsVideoCallLink(s string) bool {
	if len(s) <= len(videoLinkPrefix) {
		return false
	}
	return s[:len(videoLinkPrefix)] == videoLinkPrefix
}
