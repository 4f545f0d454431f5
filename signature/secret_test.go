package signature_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/xraph/folio/signature"
)

func TestGenerateSecret(t *testing.T) {
	seen := make(map[string]bool)
	for range 20 {
		secret := signature.GenerateSecret()

		raw, ok := strings.CutPrefix(secret, signature.SecretPrefix)
		if !ok {
			t.Fatalf("missing prefix in %q", secret)
		}
		b, err := hex.DecodeString(raw)
		if err != nil || len(b) != 32 {
			t.Fatalf("expected 32 hex-encoded bytes, got %q (%v)", raw, err)
		}
		if seen[secret] {
			t.Fatalf("secret repeated: %q", secret)
		}
		seen[secret] = true
	}
}
