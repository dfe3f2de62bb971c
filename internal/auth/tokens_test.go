package auth

import (
	"errors"
	"testing"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
)

func TestIssueAndVerify(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	user := &models.User{ID: "u1", Username: "demo", Email: "demo@example.com"}
	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID() != "u1" {
		t.Errorf("subject = %q, want u1", claims.UserID())
	}
	if claims.Username != "demo" {
		t.Errorf("username = %q, want demo", claims.Username)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenService("secret-a")
	verifier, _ := NewTokenService("secret-b")

	token, err := issuer.Issue(&models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("cross-secret verify error = %v, want ErrForbidden", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, _ := NewTokenService("test-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("Verify(%q) error = %v, want ErrForbidden", token, err)
		}
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService(""); err == nil {
		t.Error("empty secret should be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Error("hash must not equal the plaintext")
	}

	if !CheckPassword("hunter22", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
