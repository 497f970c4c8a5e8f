package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/models"
)

func (r *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser pre-checks the email before inserting. The check-then-insert pair
// is not atomic; the unique index on email backstops the race and surfaces as
// ErrStorageIntegrity.
func (r *Store) CreateUser(ctx context.Context, user *models.User) error {
	var existing models.User
	err := r.DB.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return apperr.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return integrity(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *Store) SaveUser(ctx context.Context, user *models.User) error {
	return integrity(r.DB.WithContext(ctx).Save(user).Error)
}

// SetConfirmed flips only the confirmed flag and commits before any session
// issue is attempted.
func (r *Store) SetConfirmed(ctx context.Context, userID uint) error {
	return integrity(r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_confirmed", true).Error)
}

// DeleteUser removes the user together with its token pairs and cart items in
// one transaction.
func (r *Store) DeleteUser(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.TokenPair{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	return integrity(err)
}
