package service

import (
	"os"
	"testing"
)

func TestIssueAndParseJWT(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")
	InitJWT()

	token, err := IssueJWT(42)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	userID, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestParseJWTTampered(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")
	InitJWT()

	token, err := IssueJWT(42)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := ParseJWT(token + "x"); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
	if _, err := ParseJWT("not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "secret-a")
	InitJWT()
	token, err := IssueJWT(7)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	os.Setenv("JWT_SECRET", "secret-b")
	InitJWT()
	defer os.Unsetenv("JWT_SECRET")

	if _, err := ParseJWT(token); err == nil {
		t.Fatalf("expected token signed with old secret to be rejected")
	}
}
