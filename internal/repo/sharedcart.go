package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/innovativedesigner773/sharecart/internal/models"
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Create(ctx context.Context, cart *models.SharedCart) error {
	return r.DB.WithContext(ctx).Create(cart).Error
}

func (r *GormRepo) TokenExists(ctx context.Context, token string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.SharedCart{}).
		Where("share_token = ?", token).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) FindByToken(ctx context.Context, token string) (*models.SharedCart, error) {
	var cart models.SharedCart
	if err := r.DB.WithContext(ctx).Where("share_token = ?", token).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SharedCart, error) {
	var cart models.SharedCart
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.SharedCart, error) {
	var carts []models.SharedCart
	if err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

// RegisterAccess bumps the access counter in a single UPDATE so concurrent
// readers never lose increments.
func (r *GormRepo) RegisterAccess(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.SharedCart{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"access_count":     gorm.Expr("access_count + ?", 1),
			"last_accessed_at": now,
		}).Error
}

// MarkPaid is the only path from active to paid. The status guard in the
// WHERE clause makes exactly one of any number of concurrent callers win;
// the rest see zero rows affected. paid_by_id, paid_at and order_id are set
// in the same statement as the status change.
func (r *GormRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidBy uuid.UUID, orderID uuid.UUID, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.SharedCart{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		UpdateColumns(map[string]interface{}{
			"status":     models.StatusPaid,
			"paid_by_id": paidBy,
			"paid_at":    now,
			"order_id":   orderID,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) MarkCancelled(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.SharedCart{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		UpdateColumns(map[string]interface{}{
			"status":     models.StatusCancelled,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.SharedCart{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		UpdateColumns(map[string]interface{}{
			"status":     models.StatusExpired,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SweepExpired demotes every overdue active record in one statement and
// returns how many rows changed.
func (r *GormRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.SharedCart{}).
		Where("status = ? AND expires_at <= ?", models.StatusActive, now).
		UpdateColumns(map[string]interface{}{
			"status":     models.StatusExpired,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// PurgeTerminal deletes terminal records untouched since before the cutoff.
// Active records are never purged regardless of age.
func (r *GormRepo) PurgeTerminal(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("status <> ? AND updated_at < ?", models.StatusActive, before).
		Delete(&models.SharedCart{})
	return res.RowsAffected, res.Error
}
