package domain

import (
	"time"

	"gorm.io/gorm"
)

// Subscription mirrors the payment provider's state for a business. The
// provider is the source of truth; rows here are snapshots taken on
// create/cancel so the dashboard can render without a provider round trip.
type Subscription struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	BusinessID         uint      `gorm:"index;not null" json:"business_id"`
	CustomerID         string    `gorm:"not null" json:"customer_id"`
	SubscriptionID     string    `gorm:"uniqueIndex;not null" json:"subscription_id"`
	Status             string    `gorm:"type:varchar(30);not null" json:"status"`
	PriceID            string    `gorm:"not null" json:"price_id"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
	Amount             int64     `json:"amount"`
	Currency           string    `gorm:"type:varchar(10);default:usd" json:"currency"`
	PaymentMethodID    string    `json:"payment_method_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
