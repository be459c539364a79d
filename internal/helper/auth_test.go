package helper

import (
	"testing"
	"time"

	"github.com/glowdesk/business_service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateLoginToken_RoundTrip(t *testing.T) {
	t.Parallel()

	auth := SetupAuth("super-secret")
	business := &domain.Business{
		ID:    42,
		Email: "Owner@Example.com",
		Name:  "Glow Spa",
		Role:  domain.RoleBusiness,
	}

	tok, err := auth.GenerateLoginToken(business)
	if err != nil {
		t.Fatalf("GenerateLoginToken error: %v", err)
	}

	claims, err := auth.VerifyToken(tok)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if claims.BusinessID != 42 {
		t.Fatalf("business id mismatch: got %d want 42", claims.BusinessID)
	}
	if claims.Email != "owner@example.com" {
		t.Fatalf("email not case-folded: got %q", claims.Email)
	}
	if claims.Name != "Glow Spa" || claims.Role != domain.RoleBusiness {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestGenerateLoginToken_MissingInputs(t *testing.T) {
	t.Parallel()

	auth := SetupAuth("s")
	if _, err := auth.GenerateLoginToken(nil); err == nil {
		t.Fatal("expected error for nil business")
	}
	if _, err := auth.GenerateLoginToken(&domain.Business{ID: 0, Email: "a@x.com"}); err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestVerifyToken_BearerPrefix(t *testing.T) {
	t.Parallel()

	auth := SetupAuth("super-secret")
	tok, err := auth.GenerateVerificationToken(7, "a@x.com")
	if err != nil {
		t.Fatalf("GenerateVerificationToken error: %v", err)
	}

	claims, err := auth.VerifyToken("Bearer " + tok)
	if err != nil {
		t.Fatalf("VerifyToken with bearer prefix error: %v", err)
	}
	if claims.BusinessID != 7 {
		t.Fatalf("business id mismatch: got %d want 7", claims.BusinessID)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := SetupAuth("right-secret").GenerateVerificationToken(1, "a@x.com")
	if err != nil {
		t.Fatalf("GenerateVerificationToken error: %v", err)
	}

	if _, err := SetupAuth("wrong-secret").VerifyToken(tok); err == nil {
		t.Fatal("expected error for invalid signature")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	auth := SetupAuth("super-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"business_id": float64(1),
		"email":       "a@x.com",
		"iat":         time.Now().Add(-2 * time.Hour).Unix(),
		"exp":         time.Now().Add(-1 * time.Hour).Unix(),
	})
	tok, err := expired.SignedString([]byte(auth.Secret))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := auth.VerifyToken(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifyToken_Malformed(t *testing.T) {
	t.Parallel()

	auth := SetupAuth("super-secret")
	for _, tok := range []string{"", "not.a.jwt", "Bearer "} {
		if _, err := auth.VerifyToken(tok); err == nil {
			t.Fatalf("expected error for malformed token %q", tok)
		}
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	auth := SetupAuth("s")
	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := auth.VerifyPassword("pw1", string(hash)); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := auth.VerifyPassword("wrong", string(hash)); err == nil {
		t.Fatal("expected error for wrong password")
	}
}
