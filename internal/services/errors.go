package services

import "errors"

// Rule failures handlers report verbatim to the client. Everything else that
// escapes a workflow step is treated as unexpected and kept opaque.
var (
	ErrEmailExists      = errors.New("Email already exist")
	ErrNotRegistered    = errors.New("Email not registered")
	ErrInvalidPassword  = errors.New("Invalid password")
	ErrEmailNotVerified = errors.New("Email not verified")
	ErrInvalidToken     = errors.New("Invalid Token")
	ErrKeywordNotFound  = errors.New("Keyword not found")
	ErrInvalidInput     = errors.New("Each keyword must have a name property")
	ErrNoSubscription   = errors.New("No active subscription found")
)

// IsRuleError reports whether err is a business-rule failure (HTTP 400), as
// opposed to an unexpected one (HTTP 500, opaque message).
func IsRuleError(err error) bool {
	switch {
	case errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrNotRegistered),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrEmailNotVerified),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrKeywordNotFound),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNoSubscription):
		return true
	}
	return false
}
