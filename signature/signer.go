// Package signature provides HMAC-SHA256 webhook signing and verification.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Header is the request header that carries the payload signature.
const Header = "X-Webhook-Signature"

// Signer computes HMAC-SHA256 signatures for webhook payloads.
type Signer struct{}

// NewSigner returns a new Signer.
func NewSigner() *Signer {
	return &Signer{}
}

// Sign generates the signature for the given payload.
func (s *Signer) Sign(payload []byte, secret string) string {
	return Sign(payload, secret)
}

// Sign returns the hex-encoded HMAC-SHA256 of payload keyed by secret.
// The payload must be the exact bytes sent on the wire.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
