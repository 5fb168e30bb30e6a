package auth

import (
	"strings"
	"testing"
)

func TestCookieSigner_SignAndVerify(t *testing.T) {
	signer := NewCookieSigner("test-secret")

	value := signer.Sign("session-id-123")
	if !strings.HasPrefix(value, "session-id-123.") {
		t.Errorf("signed value should start with session ID, got %q", value)
	}

	sessionID, err := signer.Verify(value)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if sessionID != "session-id-123" {
		t.Errorf("Verify() = %q, want %q", sessionID, "session-id-123")
	}
}

func TestCookieSigner_Verify_TamperedID(t *testing.T) {
	signer := NewCookieSigner("test-secret")

	value := signer.Sign("session-id-123")
	tampered := strings.Replace(value, "session-id-123", "session-id-456", 1)

	if _, err := signer.Verify(tampered); err == nil {
		t.Error("expected error for tampered session ID")
	}
}

func TestCookieSigner_Verify_WrongSecret(t *testing.T) {
	signer := NewCookieSigner("secret-a")
	other := NewCookieSigner("secret-b")

	value := signer.Sign("session-id-123")

	if _, err := other.Verify(value); err == nil {
		t.Error("expected error for signature created with different secret")
	}
}

func TestCookieSigner_Verify_Malformed(t *testing.T) {
	signer := NewCookieSigner("test-secret")

	cases := []string{"", "no-separator", ".sig-only", "id-only."}
	for _, c := range cases {
		if _, err := signer.Verify(c); err == nil {
			t.Errorf("expected error for malformed value %q", c)
		}
	}
}
