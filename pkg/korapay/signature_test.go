package korapay

import "testing"

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event":"charge.success","data":{"reference":"TOKEN-20260314-0A1B2C3D"}}`)

	sig := SignPayload(secret, body)
	if sig == "" {
		t.Fatal("expected non-empty signature")
	}

	if !VerifySignature(secret, body, sig) {
		t.Fatal("expected matching signature to verify")
	}
	if VerifySignature(secret, body, sig+"x") {
		t.Fatal("tampered signature should not verify")
	}
	if VerifySignature(secret, append(body, '!'), sig) {
		t.Fatal("tampered body should not verify")
	}
	if VerifySignature("other-secret", body, sig) {
		t.Fatal("wrong secret should not verify")
	}
	if VerifySignature(secret, body, "") {
		t.Fatal("empty signature should not verify")
	}
}
