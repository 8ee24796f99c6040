package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-session-secret"

func TestGenerateAndValidateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken("delfi@example.com", "Delfi", testSecret, 12*time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("token must not be empty")
	}

	claims, err := ValidateSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Email != "delfi@example.com" {
		t.Errorf("email = %s, want delfi@example.com", claims.Email)
	}
	if claims.Name != "Delfi" {
		t.Errorf("name = %s, want Delfi", claims.Name)
	}
}

func TestValidateSessionToken_Errors(t *testing.T) {
	valid, err := GenerateSessionToken("delfi@example.com", "Delfi", testSecret, 12*time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	expired, err := GenerateSessionToken("delfi@example.com", "Delfi", testSecret, -time.Hour)
	if err != nil {
		t.Fatalf("generate expired: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"expired token", expired, testSecret, jwt.ErrTokenExpired},
		{"wrong secret", valid, "wrong-secret", jwt.ErrTokenSignatureInvalid},
		{"malformed token", "not.a.valid.jwt", testSecret, jwt.ErrTokenMalformed},
		{"empty token", "", testSecret, jwt.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSessionToken(tt.token, tt.secret)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionToken_RejectsNonHMAC(t *testing.T) {
	// Algorithm confusion: a token signed with "none" must be rejected
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: "delfi@example.com",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ValidateSessionToken(signed, testSecret); err == nil {
		t.Error("token signed with none must be rejected")
	}
}

func TestIsAllowed(t *testing.T) {
	a := NewGoogleAuthenticator("id", "secret", "http://localhost/callback",
		[]string{"Delfi@Example.com", " facu@example.com ", ""})

	tests := []struct {
		email string
		want  bool
	}{
		{"delfi@example.com", true},
		{"DELFI@EXAMPLE.COM", true},
		{"facu@example.com", true},
		{"intruso@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := a.IsAllowed(tt.email); got != tt.want {
			t.Errorf("IsAllowed(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
