package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive    = "active"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// IsTerminal reports whether a status permits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusPaid || status == StatusCancelled || status == StatusExpired
}

type SnapshotItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  uint      `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	LineTotal int64     `json:"line_total"`
}

type Promotion struct {
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

// CartSnapshot is the cart exactly as the owner saw it at share time.
// All amounts are in minor currency units. The column is written once on
// insert and never updated afterwards.
type CartSnapshot struct {
	Items             []SnapshotItem `json:"items"`
	Subtotal          int64          `json:"subtotal"`
	Discount          int64          `json:"discount"`
	Promotions        []Promotion    `json:"promotions,omitempty"`
	LoyaltyAdjustment int64          `json:"loyalty_adjustment"`
	Total             int64          `json:"total"`
}

func (s CartSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *CartSnapshot) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported cart_snapshot column type %T", value)
	}
}

type SharedCart struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"                  json:"id"`
	ShareToken     string       `gorm:"uniqueIndex;size:64;not null"          json:"share_token"`
	OwnerID        *uuid.UUID   `gorm:"type:uuid;index"                       json:"owner_id,omitempty"`
	GuestRef       string       `gorm:"size:128;index"                        json:"guest_ref,omitempty"`
	Snapshot       CartSnapshot `gorm:"type:jsonb;not null"                   json:"snapshot"`
	Message        string       `gorm:"size:280"                              json:"message,omitempty"`
	ExpiryDays     int          `gorm:"not null"                              json:"expiry_days"`
	Status         string       `gorm:"size:16;index;not null;default:'active'" json:"status"`
	ExpiresAt      time.Time    `gorm:"index;not null"                        json:"expires_at"`
	PaidByID       *uuid.UUID   `gorm:"type:uuid"                             json:"paid_by_id,omitempty"`
	PaidAt         *time.Time   `json:"paid_at,omitempty"`
	OrderID        *uuid.UUID   `gorm:"type:uuid"                             json:"order_id,omitempty"`
	AccessCount    int64        `gorm:"not null;default:0"                    json:"access_count"`
	LastAccessedAt *time.Time   `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (c *SharedCart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (SharedCart) TableName() string {
	return "shared_carts"
}
