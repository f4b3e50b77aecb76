package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/innovativedesigner773/sharecart/internal/models"
)

type NotificationCategory string

const (
	NotificationPaid        NotificationCategory = "paid"
	NotificationExpired     NotificationCategory = "expired"
	NotificationHeavyAccess NotificationCategory = "heavy_access"
)

// Notification is derived on demand from the shared cart rows; there is no
// notification table. (Category, CartID) identifies an event, so repeated
// polls over unchanged state return the same set.
type Notification struct {
	Category    NotificationCategory `json:"category"`
	CartID      uuid.UUID            `json:"cart_id"`
	ShareToken  string               `json:"share_token"`
	OccurredAt  time.Time            `json:"occurred_at"`
	AccessCount int64                `json:"access_count,omitempty"`
	PaidByID    *uuid.UUID           `json:"paid_by_id,omitempty"`
}

// NotificationsFor recomputes the owner's feed: recently paid or expired
// shares plus shares drawing unusually heavy traffic, newest first. At most
// one event per category per record.
func (s *ShareService) NotificationsFor(ctx context.Context, ownerID uuid.UUID) ([]Notification, error) {
	carts, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Notification, 0, len(carts))
	for i := range carts {
		c := &carts[i]

		switch c.Status {
		case models.StatusPaid:
			if c.PaidAt != nil && now.Sub(*c.PaidAt) <= s.Cfg.PaidWindow {
				out = append(out, Notification{
					Category:   NotificationPaid,
					CartID:     c.ID,
					ShareToken: c.ShareToken,
					OccurredAt: *c.PaidAt,
					PaidByID:   c.PaidByID,
				})
			}
		case models.StatusExpired:
			if now.Sub(c.UpdatedAt) <= s.Cfg.ExpiredWindow {
				out = append(out, Notification{
					Category:   NotificationExpired,
					CartID:     c.ID,
					ShareToken: c.ShareToken,
					OccurredAt: c.UpdatedAt,
				})
			}
		}

		if c.AccessCount > s.Cfg.AccessThreshold &&
			c.LastAccessedAt != nil && now.Sub(*c.LastAccessedAt) <= s.Cfg.AccessWindow {
			out = append(out, Notification{
				Category:    NotificationHeavyAccess,
				CartID:      c.ID,
				ShareToken:  c.ShareToken,
				OccurredAt:  *c.LastAccessedAt,
				AccessCount: c.AccessCount,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}
