package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/innovativedesigner773/sharecart/internal/models"
)

type CreateShareRequest struct {
	Snapshot   models.CartSnapshot `json:"snapshot" validate:"required"`
	Message    string              `json:"message" validate:"max=280"`
	ExpiryDays int                 `json:"expiry_days" validate:"required,oneof=1 3 7 14 30"`
}

type CreateShareResponse struct {
	ID         uuid.UUID `json:"id"`
	ShareToken string    `json:"share_token"`
	ShareURL   string    `json:"share_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type ResolveResponse struct {
	Status      string              `json:"status"`
	Payable     bool                `json:"payable"`
	Snapshot    models.CartSnapshot `json:"snapshot"`
	Message     string              `json:"message,omitempty"`
	ExpiresAt   time.Time           `json:"expires_at"`
	AccessCount int64               `json:"access_count"`
}

type CompletePaymentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type PaymentOutcome struct {
	Outcome string    `json:"outcome"`
	Message string    `json:"message,omitempty"`
	CartID  uuid.UUID `json:"cart_id,omitempty"`
}
