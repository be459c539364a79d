package dto

// Mail event kinds published to the mail topic. The mail worker dispatches on
// Kind; unknown kinds are rejected.
const (
	MailKindWelcome       = "business.welcome"
	MailKindVerifyEmail   = "business.verify_email"
	MailKindResetPassword = "business.reset_password"
	MailKindEmbedCode     = "business.embed_code"
)

type MailEvent struct {
	Kind       string `json:"kind"`
	BusinessID uint   `json:"business_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Token      string `json:"token,omitempty"`
}
