package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/xraph/folio/signature"
)

func TestSignKnownVector(t *testing.T) {
	signer := signature.NewSigner()
	payload := []byte(`{"event":"entry.published"}`)
	secret := "whsec_testsecret123"

	got := signer.Sign(payload, secret)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if got != expected {
		t.Errorf("Sign() = %q, want %q", got, expected)
	}
}

func TestSignDeterministic(t *testing.T) {
	payload := []byte(`{"entry":{"id":"entry_01h2x"},"contentType":{"slug":"post"}}`)
	a := signature.Sign(payload, "whsec_same")
	b := signature.Sign(payload, "whsec_same")
	if a != b {
		t.Errorf("same payload and secret produced %q and %q", a, b)
	}
}

func TestSignChangesWithOneByte(t *testing.T) {
	payload := []byte(`{"n":1}`)
	tweaked := []byte(`{"n":2}`)
	if signature.Sign(payload, "s") == signature.Sign(tweaked, "s") {
		t.Error("one-byte change did not change the signature")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer := signature.NewSigner()
	payload := []byte(`{"entry_id":"entry_01h2x","status":"PUBLISHED"}`)
	secret := "whsec_roundtripsecret"

	sig := signer.Sign(payload, secret)
	if !signer.Verify(payload, secret, sig) {
		t.Error("Verify() returned false for valid signature")
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	signer := signature.NewSigner()
	payload := []byte(`{"original":true}`)
	secret := "whsec_tampersecret"

	sig := signer.Sign(payload, secret)

	tampered := []byte(`{"original":false}`)
	if signer.Verify(tampered, secret, sig) {
		t.Error("Verify() returned true for tampered payload")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signer := signature.NewSigner()
	payload := []byte(`{"data":"value"}`)

	sig := signer.Sign(payload, "whsec_correct")

	if signer.Verify(payload, "whsec_wrong", sig) {
		t.Error("Verify() returned true for wrong secret")
	}
}

func TestSignatureFormat(t *testing.T) {
	sig := signature.Sign([]byte("test"), "secret")

	// SHA256 = 32 bytes = 64 hex chars, no prefix
	if len(sig) != 64 {
		t.Errorf("expected signature length 64, got %d", len(sig))
	}
	if _, err := hex.DecodeString(sig); err != nil {
		t.Errorf("signature is not hex: %v", err)
	}
}
