package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T, scheme Scheme) *Hasher {
	t.Helper()
	h, err := NewHasher(WithScheme(scheme), WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHasherRoundTrip(t *testing.T) {
	for _, scheme := range []Scheme{SchemeBcrypt, SchemeArgon2id} {
		t.Run(string(scheme), func(t *testing.T) {
			h := newTestHasher(t, scheme)
			hash, err := h.Hash("Secret123!")
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			if strings.Contains(hash, "Secret123!") {
				t.Fatal("hash contains plaintext")
			}
			if got, _ := SchemeOf(hash); got != scheme {
				t.Fatalf("scheme=%q want %q", got, scheme)
			}
			ok, err := h.Verify("Secret123!", hash)
			if err != nil || !ok {
				t.Fatalf("verify correct password: ok=%v err=%v", ok, err)
			}
			ok, err = h.Verify("secret123!", hash)
			if err != nil || ok {
				t.Fatalf("verify wrong password: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestHasherSaltsEachHash(t *testing.T) {
	h := newTestHasher(t, SchemeArgon2id)
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatal("expected different hashes for the same password")
	}
}

func TestVerifyDispatchesByStoredScheme(t *testing.T) {
	bc := newTestHasher(t, SchemeBcrypt)
	ar := newTestHasher(t, SchemeArgon2id)

	legacy, _ := bc.Hash("pw-1")
	ok, err := ar.Verify("pw-1", legacy)
	if err != nil || !ok {
		t.Fatalf("argon2id hasher must verify bcrypt hashes: ok=%v err=%v", ok, err)
	}
	if !ar.NeedsRehash(legacy) {
		t.Fatal("bcrypt hash should need rehash under argon2id")
	}
	if bc.NeedsRehash(legacy) {
		t.Fatal("bcrypt hash should not need rehash under bcrypt")
	}
}

func TestVerifyRejectsUnknownAndCorruptHashes(t *testing.T) {
	h := newTestHasher(t, SchemeBcrypt)
	if _, err := h.Verify("x", "plaintext"); !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("expected ErrUnknownScheme, got %v", err)
	}
	if _, err := h.Verify("x", "$argon2id$v=19$m=1$bad"); err == nil {
		t.Fatal("expected error for corrupt argon2id hash")
	}
	if _, err := h.Hash(""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := NewHasher(WithScheme("md5")); !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("expected ErrUnknownScheme, got %v", err)
	}
}

func TestBcryptRejectsInputPastLimit(t *testing.T) {
	h := newTestHasher(t, SchemeBcrypt)
	full := strings.Repeat("a", 72)
	hash, err := h.Hash(full)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ok, err := h.Verify(full, hash); err != nil || !ok {
		t.Fatalf("verify exact password: ok=%v err=%v", ok, err)
	}
	if ok, err := h.Verify(full+"garbage", hash); err != nil || ok {
		t.Fatalf("verify with suffix: ok=%v err=%v", ok, err)
	}
	if _, err := h.Hash(full + "a"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for 73 bytes, got %v", err)
	}
}
