package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/innovativedesigner773/sharecart/internal/models"
	"github.com/innovativedesigner773/sharecart/internal/repo"
	"github.com/innovativedesigner773/sharecart/internal/token"
	"github.com/innovativedesigner773/sharecart/pkg/logging"
	"gorm.io/gorm"
)

const (
	EventCreated   = "share_created"
	EventPaid      = "share_paid"
	EventCancelled = "share_cancelled"
	EventExpired   = "share_expired"
)

const MaxMessageLen = 280

// AllowedExpiryDays is the enumerated set of expiry windows an owner may pick.
var AllowedExpiryDays = map[int]bool{1: true, 3: true, 7: true, 14: true, 30: true}

// Publisher pushes lifecycle events to the event stream. Delivery is
// best-effort; the notification feed derives from rows, not from events.
type Publisher interface {
	Publish(ctx context.Context, event string, cartID uuid.UUID, at time.Time) error
}

// Config holds the recency heuristics of the notification feed.
type Config struct {
	PaidWindow      time.Duration
	ExpiredWindow   time.Duration
	AccessWindow    time.Duration
	AccessThreshold int64
}

func DefaultConfig() Config {
	return Config{
		PaidWindow:      24 * time.Hour,
		ExpiredWindow:   24 * time.Hour,
		AccessWindow:    time.Hour,
		AccessThreshold: 5,
	}
}

type ShareService struct {
	Repo     *repo.GormRepo
	Tokens   *token.Generator
	Producer Publisher
	Cfg      Config

	// Now is overridable in tests; defaults to the wall clock.
	Now func() time.Time
}

func (s *ShareService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *ShareService) publish(ctx context.Context, event string, cartID uuid.UUID, at time.Time) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.Publish(ctx, event, cartID, at); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "event", event, "cart_id", cartID, "error", err)
	}
}

// CreateShare snapshots a cart under a fresh token. Exactly one of ownerID
// and guestRef identifies the sharer.
func (s *ShareService) CreateShare(ctx context.Context, ownerID *uuid.UUID, guestRef string, snapshot models.CartSnapshot, message string, expiryDays int) (*models.SharedCart, error) {
	if ownerID == nil && guestRef == "" {
		return nil, fmt.Errorf("owner or guest session required: %w", ErrValidation)
	}
	if len(snapshot.Items) == 0 {
		return nil, fmt.Errorf("cart snapshot must contain items: %w", ErrValidation)
	}
	if !AllowedExpiryDays[expiryDays] {
		return nil, fmt.Errorf("expiry window %d not allowed: %w", expiryDays, ErrValidation)
	}
	if len(message) > MaxMessageLen {
		return nil, fmt.Errorf("message exceeds %d characters: %w", MaxMessageLen, ErrValidation)
	}

	shareToken, err := s.Tokens.Generate(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cart := &models.SharedCart{
		ShareToken: shareToken,
		OwnerID:    ownerID,
		GuestRef:   guestRef,
		Snapshot:   snapshot,
		Message:    message,
		ExpiryDays: expiryDays,
		Status:     models.StatusActive,
		ExpiresAt:  now.Add(time.Duration(expiryDays) * 24 * time.Hour),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(ctx, EventCreated, cart.ID, now)
	return cart, nil
}

// Resolve looks a share up by token on behalf of a recipient. An active but
// overdue record is demoted to expired on the spot and reported as such; an
// already expired record keeps reporting expired. Paid and cancelled records
// stay readable so the snapshot can still be shown for reference. Every
// successful read is counted.
func (s *ShareService) Resolve(ctx context.Context, shareToken string) (*models.SharedCart, error) {
	cart, err := s.Repo.FindByToken(ctx, shareToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unknown share token: %w", ErrNotFound)
		}
		return nil, err
	}

	now := s.now()
	switch {
	case cart.Status == models.StatusExpired:
		return nil, fmt.Errorf("share link expired: %w", ErrExpired)
	case cart.Status == models.StatusActive && !now.Before(cart.ExpiresAt):
		won, err := s.Repo.MarkExpired(ctx, cart.ID, now)
		if err != nil {
			return nil, err
		}
		if won {
			s.publish(ctx, EventExpired, cart.ID, now)
		}
		return nil, fmt.Errorf("share link expired: %w", ErrExpired)
	}

	if err := s.Repo.RegisterAccess(ctx, cart.ID, now); err != nil {
		return nil, err
	}
	cart.AccessCount++
	cart.LastAccessedAt = &now
	return cart, nil
}

// CompletePayment is the callback the order subsystem makes after checkout.
// Losing a race to another payer is reported as ErrAlreadyFinalized, never
// as a second paid record.
func (s *ShareService) CompletePayment(ctx context.Context, shareToken string, paidBy uuid.UUID, orderID uuid.UUID) (*models.SharedCart, error) {
	if paidBy == uuid.Nil {
		return nil, fmt.Errorf("paying user required: %w", ErrValidation)
	}
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order reference required: %w", ErrValidation)
	}

	cart, err := s.Repo.FindByToken(ctx, shareToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unknown share token: %w", ErrNotFound)
		}
		return nil, err
	}

	now := s.now()
	if cart.Status == models.StatusActive && !now.Before(cart.ExpiresAt) {
		if _, err := s.Repo.MarkExpired(ctx, cart.ID, now); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("share link expired: %w", ErrExpired)
	}

	won, err := s.Repo.MarkPaid(ctx, cart.ID, paidBy, orderID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("cart is no longer payable: %w", ErrAlreadyFinalized)
	}

	s.publish(ctx, EventPaid, cart.ID, now)
	return s.Repo.FindByID(ctx, cart.ID)
}

// Cancel withdraws an active share. Only the owning user may cancel.
func (s *ShareService) Cancel(ctx context.Context, shareToken string, ownerID uuid.UUID) (*models.SharedCart, error) {
	cart, err := s.Repo.FindByToken(ctx, shareToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unknown share token: %w", ErrNotFound)
		}
		return nil, err
	}
	if cart.OwnerID == nil || *cart.OwnerID != ownerID {
		return nil, fmt.Errorf("only the owner may cancel a share: %w", ErrForbidden)
	}

	now := s.now()
	won, err := s.Repo.MarkCancelled(ctx, cart.ID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("cart is already finalized: %w", ErrAlreadyFinalized)
	}

	s.publish(ctx, EventCancelled, cart.ID, now)
	return s.Repo.FindByID(ctx, cart.ID)
}

// ListShares returns the owner's shares newest-first for the storefront UI.
func (s *ShareService) ListShares(ctx context.Context, ownerID uuid.UUID) ([]models.SharedCart, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}
