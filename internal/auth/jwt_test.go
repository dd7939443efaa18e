package auth

import (
	"strings"
	"testing"
	"time"
)

// newTestTokenService creates a TokenService with a fixed, known secret so
// tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ValidSecret(t *testing.T) {
	_, err := NewTokenService("this-is-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
}

func TestGenerate_ReturnsWellFormedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	// A JWT has 3 dot-separated parts: header.payload.signature.
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("token has %d parts, want 3", len(parts))
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-456")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	userID, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != "user-456" {
		t.Errorf("Validate() userID = %q, want %q", userID, "user-456")
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	// Issue a token that expired a minute ago.
	token, err := ts.GenerateWithDuration("user-789", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject an expired token")
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Flip a character in the payload — the signature no longer matches.
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	if _, err := ts.Validate(string(tampered)); err == nil {
		t.Fatal("Validate() should reject a tampered token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1 := newTestTokenService(t)
	ts2, err := NewTokenService("a-completely-different-secret!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := ts1.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := ts2.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token signed with a different secret")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ts.Validate(bad); err == nil {
			t.Errorf("Validate(%q) should fail", bad)
		}
	}
}
