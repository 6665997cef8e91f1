// File: internal/platform/crypto/generator.go

// Package crypto produces the opaque random tokens the application embeds in
// credential links and slug suffixes.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomToken returns a URL-safe token built from nBytes of CSPRNG output.
// The encoding carries no padding, so the token can travel in a link verbatim.
func RandomToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
