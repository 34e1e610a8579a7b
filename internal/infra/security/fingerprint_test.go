package security

import (
	"errors"
	"testing"
)

func TestFingerprint_Deterministic(t *testing.T) {
	first, err := Fingerprint("abc")
	if err != nil {
		t.Fatalf("Fingerprint returned error: %v", err)
	}
	second, err := Fingerprint("abc")
	if err != nil {
		t.Fatalf("Fingerprint returned error: %v", err)
	}

	if first != second {
		t.Fatalf("expected identical fingerprints, got %s and %s", first, second)
	}

	// SHA-256 of "abc".
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if first != want {
		t.Fatalf("expected %s, got %s", want, first)
	}
}

func TestFingerprint_FixedLength(t *testing.T) {
	for _, token := range []string{"a", "abc", string(make([]byte, 4096))} {
		fp, err := Fingerprint(token)
		if err != nil {
			t.Fatalf("Fingerprint returned error: %v", err)
		}
		if len(fp) != 64 {
			t.Fatalf("expected 64-character fingerprint, got %d", len(fp))
		}
	}
}

func TestFingerprint_DistinctTokens(t *testing.T) {
	a, _ := Fingerprint("token-a")
	b, _ := Fingerprint("token-b")
	if a == b {
		t.Fatalf("expected distinct fingerprints for distinct tokens")
	}
}

func TestFingerprint_EmptyToken(t *testing.T) {
	if _, err := Fingerprint(""); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if _, err := Fingerprint("   "); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken for whitespace, got %v", err)
	}
}
