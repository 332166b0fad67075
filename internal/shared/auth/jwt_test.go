package auth

import (
	"strings"
	"testing"
)

func TestJWTGenerateAndValidate(t *testing.T) {
	jwt := NewJWT("test-secret")

	token, err := jwt.Generate("u1", "test@example.com")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	claims, err := jwt.Validate(token)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	if claims.UserID != "u1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "u1")
	}
	if claims.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "test@example.com")
	}
}

func TestJWTValidate_InvalidSignature(t *testing.T) {
	jwt := NewJWT("test-secret")
	other := NewJWT("other-secret")

	token, err := other.Generate("u1", "test@example.com")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if _, err := jwt.Validate(token); err == nil {
		t.Error("Validate() expected error for foreign signature, got nil")
	}
}

func TestJWTValidate_Malformed(t *testing.T) {
	jwt := NewJWT("test-secret")

	tests := []string{
		"",
		"not-a-token",
		"only.two",
		"a.b.c.d",
	}
	for _, token := range tests {
		if _, err := jwt.Validate(token); err == nil {
			t.Errorf("Validate(%q) expected error, got nil", token)
		}
	}
}

func TestJWTValidate_TamperedClaims(t *testing.T) {
	jwt := NewJWT("test-secret")

	token, err := jwt.Generate("u1", "test@example.com")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if _, err := jwt.Validate(strings.Join(parts, ".")); err == nil {
		t.Error("Validate() expected error for tampered claims, got nil")
	}
}
