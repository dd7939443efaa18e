package auth

import (
	"strings"
	"testing"
)

// Cost 4 is bcrypt's minimum — keeps these tests fast. The logic under test
// is identical at any cost.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(4)
}

func TestHashAndVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" {
		t.Fatal("Hash() returned empty string")
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext unchanged")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("right-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "wrong-password"); err == nil {
		t.Error("Verify() should fail for the wrong password")
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	h1, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt salts every hash — identical inputs must not collide.
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := newTestPasswordService()

	// bcrypt truncates at 72 bytes; we reject instead of truncating.
	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject passwords longer than 72 bytes")
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService()

	if err := ps.Verify("not-a-bcrypt-hash", "whatever"); err == nil {
		t.Error("Verify() should fail for a malformed hash")
	}
}
