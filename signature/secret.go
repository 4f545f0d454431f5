package signature

import (
	"crypto/rand"
	"encoding/hex"
)

// SecretPrefix starts every generated webhook secret.
const SecretPrefix = "whsec_"

const secretBytes = 32

// GenerateSecret returns SecretPrefix followed by 32 random bytes in hex.
func GenerateSecret() string {
	buf := make([]byte, secretBytes)
	// rand.Read never returns an error; it aborts the process instead.
	_, _ = rand.Read(buf)
	return SecretPrefix + hex.EncodeToString(buf)
}
