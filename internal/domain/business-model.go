package domain

import (
	"time"

	"gorm.io/gorm"
)

const RoleBusiness = "business"

type Business struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Email is unique only when set: saving a chatbot config for an unknown
	// id creates a placeholder row with an empty email, and more than one
	// placeholder can exist at a time.
	Email        string `gorm:"uniqueIndex:idx_business_email,where:email <> '';not null" json:"email"`
	PasswordHash string `json:"-"`
	Name         string `gorm:"not null" json:"name"`
	ContactName  string `json:"contact_name"`
	WebsiteURL   string `json:"website_url"`
	InstagramURL string `json:"instagram_url"`
	ThemeColor   string `json:"theme_color"`
	Role         string `gorm:"type:varchar(20);not null;default:business" json:"role"`

	LogoURL      string `json:"logo"`
	LogoPublicID string `json:"-"`

	LoginToken         *string    `json:"login_token,omitempty"`
	LoginTime          *time.Time `json:"login_time,omitempty"`
	ResetPasswordToken *string    `json:"-"`
	IsEmailVerified    bool       `gorm:"not null;default:false" json:"is_email_verified"`

	Keywords  []Keyword        `gorm:"constraint:OnDelete:CASCADE" json:"keywords"`
	Questions []ChatbotQuestion `gorm:"serializer:json" json:"questions"`
	Services  []ChatbotService  `gorm:"serializer:json" json:"services"`

	PaymentCustomerID string `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Keyword is a chatbot trigger owned by exactly one business. Identity is the
// generated id, not the name, so near-duplicate names are allowed.
type Keyword struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uint   `gorm:"index;not null" json:"business_id"`
	Name       string `gorm:"not null" json:"name"`
	// Seq is sequence-assigned on insert; listings order by it, so rows
	// batch-inserted in one statement keep their insertion order even
	// though they share a created_at timestamp.
	Seq       int64     `gorm:"autoIncrement" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatbotQuestion struct {
	Name string `json:"name"`
}

type ChatbotService struct {
	Name string `json:"name"`
}
