package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/models"
)

func (r *Store) CreateTokenPair(ctx context.Context, pair *models.TokenPair) error {
	return integrity(r.DB.WithContext(ctx).Create(pair).Error)
}

func (r *Store) PairByUUID(ctx context.Context, uuid string) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := r.DB.WithContext(ctx).Where("uuid = ?", uuid).First(&pair).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &pair, nil
}

func (r *Store) PairsByUser(ctx context.Context, userID uint) ([]models.TokenPair, error) {
	var pairs []models.TokenPair
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

// RevokePair retires the pair only if it is still active. The conditional
// update is the serialization point for concurrent refresh calls: exactly one
// caller sees revoked=true returned here, everyone else gets false and must
// take the reuse path.
func (r *Store) RevokePair(ctx context.Context, uuid string) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&models.TokenPair{}).
		Where("uuid = ? AND revoked = ?", uuid, false).
		Update("revoked", true)
	if result.Error != nil {
		return false, integrity(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RevokeAllForUser is the mass session kill used on refresh-token reuse.
func (r *Store) RevokeAllForUser(ctx context.Context, userID uint) error {
	return integrity(r.DB.WithContext(ctx).Model(&models.TokenPair{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error)
}
