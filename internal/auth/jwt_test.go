package auth

import (
	"strings"
	"testing"
	"time"
)

var testIdentity = Identity{
	ExternalID: "105000000000000000001",
	Name:       "Tanjiro Kamado",
	Email:      "tanjiro@example.com",
	Picture:    "https://example.com/t.png",
}

// newTestTokenService creates a TokenService with a fixed secret.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
	if ts.TTL() != DefaultSessionTTL {
		t.Errorf("TTL() = %v, want %v", ts.TTL(), DefaultSessionTTL)
	}
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate_ReturnsJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(testIdentity)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("Generate() token doesn't look like a JWT: %q", token)
	}
}

func TestGenerate_RequiresExternalID(t *testing.T) {
	ts := newTestTokenService(t)

	if _, err := ts.Generate(Identity{Name: "anonymous"}); err == nil {
		t.Fatal("Generate() should reject an identity without an external id")
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(testIdentity)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if *got != testIdentity {
		t.Errorf("Validate() = %+v, want %+v", *got, testIdentity)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration(testIdentity, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	_, err = ts.Validate(token)
	if err == nil {
		t.Fatal("Validate() should return an error for an expired token")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("Validate() error = %v, want expiry error", err)
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate(testIdentity)
	tampered := token[:len(token)-3] + "xxx"

	if _, err := ts.Validate(tampered); err == nil {
		t.Fatal("Validate() should return an error for a tampered token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!", time.Hour)
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)

	token, _ := ts1.Generate(testIdentity)

	if _, err := ts2.Validate(token); err == nil {
		t.Fatal("Validate() should fail when using a different secret")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, input := range []string{"", "not.a.jwt.token", "abc"} {
		if _, err := ts.Validate(input); err == nil {
			t.Errorf("Validate(%q) should return an error", input)
		}
	}
}

func TestIdentity_Owner(t *testing.T) {
	owner := testIdentity.Owner()
	if owner.ExternalID != testIdentity.ExternalID || owner.Name != testIdentity.Name {
		t.Errorf("Owner() = %+v, want fields copied from %+v", owner, testIdentity)
	}
}
