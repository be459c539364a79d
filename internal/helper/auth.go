package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/glowdesk/business_service/internal/domain"
	"github.com/glowdesk/business_service/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginTokenTTL        = 24 * time.Hour
	verificationTokenTTL = 24 * time.Hour
)

// Auth is the token service. It is stateless: invalidation happens only by
// overwriting the token stored on the business row (logout, re-login).
type Auth struct {
	Secret string
}

func SetupAuth(s string) Auth {
	return Auth{
		Secret: s,
	}
}

// GenerateLoginToken signs the full claim set used by both login and
// reset-password tokens.
func (a Auth) GenerateLoginToken(b *domain.Business) (string, error) {
	if b == nil || b.ID == 0 || b.Email == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	return a.sign(jwt.MapClaims{
		"business_id": b.ID,
		"name":        b.Name,
		"email":       strings.ToLower(b.Email),
		"role":        b.Role,
		"created_at":  b.CreatedAt.Format(time.RFC3339),
		"updated_at":  b.UpdatedAt.Format(time.RFC3339),
		"iat":         now.Unix(),
		"exp":         now.Add(loginTokenTTL).Unix(),
	})
}

// GenerateVerificationToken carries a reduced claim set: just the subject id
// and email.
func (a Auth) GenerateVerificationToken(businessID uint, email string) (string, error) {
	if businessID == 0 || email == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	return a.sign(jwt.MapClaims{
		"business_id": businessID,
		"email":       strings.ToLower(email),
		"iat":         now.Unix(),
		"exp":         now.Add(verificationTokenTTL).Unix(),
	})
}

func (a Auth) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

func (a Auth) VerifyToken(tokenString string) (dto.AuthClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return dto.AuthClaims{}, errors.New("missing token")
	}

	// support both:
	// - "Bearer <token>"
	// - "<token>"
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return dto.AuthClaims{}, errors.New("invalid token format")
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		return dto.AuthClaims{}, errors.New("token parse error")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return dto.AuthClaims{}, errors.New("invalid token claims")
	}

	expAny, ok := claims["exp"]
	if !ok {
		return dto.AuthClaims{}, errors.New("missing expiry")
	}
	expFloat, ok := expAny.(float64)
	if !ok {
		return dto.AuthClaims{}, errors.New("invalid expiry type")
	}
	if float64(time.Now().Unix()) > expFloat {
		return dto.AuthClaims{}, errors.New("token expired")
	}

	idFloat, ok := claims["business_id"].(float64)
	if !ok {
		return dto.AuthClaims{}, errors.New("invalid subject claim")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	iat, _ := claims["iat"].(float64)

	return dto.AuthClaims{
		BusinessID: uint(idFloat),
		Email:      email,
		Name:       name,
		Role:       role,
		Iat:        iat,
		Expiry:     expFloat,
	}, nil
}

func (a Auth) GetCurrentBusiness(ctx *fiber.Ctx) (dto.AuthClaims, error) {
	u := ctx.Locals("business")
	claims, ok := u.(dto.AuthClaims)
	if !ok {
		return dto.AuthClaims{}, errors.New("missing auth business in context")
	}
	return claims, nil
}

func (a Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword(
		[]byte(hashed),
		[]byte(plain),
	); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}
