package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SaveProfile(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	FindInactiveSince(ctx context.Context, threshold time.Time) ([]models.User, error)
	DeactivateIfInactive(ctx context.Context, id uint, cutoff time.Time) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

var errUserNotFound = apperrors.NotFound("User")

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrEmailTaken.WithError(err)
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, errUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, errUserNotFound)
	}
	return &user, nil
}

// SaveProfile writes only the self-editable columns of user.
func (r *userRepository) SaveProfile(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("phone", "city", "avatar").
		Updates(user).Error
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// FindInactiveSince returns active users whose last login is at or before
// threshold. Users that never logged in are not matched.
func (r *userRepository) FindInactiveSince(ctx context.Context, threshold time.Time) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND last_login <= ?", true, threshold).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

// DeactivateIfInactive clears is_active only while the row still matches
// the inactivity condition, so a login that lands after the scan wins.
func (r *userRepository) DeactivateIfInactive(ctx context.Context, id uint, cutoff time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_active = ? AND last_login <= ?", id, true, cutoff).
		Update("is_active", false)
	if result.Error != nil {
		return false, apperrors.Internal(result.Error)
	}
	return result.RowsAffected > 0, nil
}
