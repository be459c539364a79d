package dto

type CreateSubscriptionRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	PriceID         string `json:"price_id" validate:"required"`
}
