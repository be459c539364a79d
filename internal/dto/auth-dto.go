package dto

type SignupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Name         string `json:"name" validate:"required"`
	ContactName  string `json:"contact_name,omitempty"`
	WebsiteURL   string `json:"website_url,omitempty"`
	InstagramURL string `json:"instagram_url,omitempty"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"password" validate:"required,min=6"`
}

type VerifyEmailRequest struct {
	BusinessID        uint   `json:"business_id" validate:"required"`
	VerificationToken string `json:"verification_token" validate:"required"`
}

// AuthClaims is what the token service hands back after verifying a token and
// what the auth middleware stores on the request context.
type AuthClaims struct {
	BusinessID uint    `json:"business_id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Iat        float64 `json:"iat"`
	Expiry     float64 `json:"expiry"`
}
