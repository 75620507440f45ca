package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/models"
)

type SubscriptionRepository interface {
	Find(ctx context.Context, userID, courseID uint) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint) ([]models.Subscription, error)
	ListSubscribers(ctx context.Context, courseID uint) ([]models.User, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

var errSubscriptionNotFound = apperrors.NotFound("Subscription")

func (r *subscriptionRepository) Find(ctx context.Context, userID, courseID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&sub).Error
	if err != nil {
		return nil, translate(err, errSubscriptionNotFound)
	}
	return &sub, nil
}

// Create inserts the row. A second row for the same (user, course) is
// rejected by idx_subscription_user_course.
func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	err := r.db.WithContext(ctx).Create(sub).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateSubscription.WithError(err)
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Subscription{}, id)
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return errSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return subs, nil
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context, courseID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.user_id = users.id").
		Where("subscriptions.course_id = ?", courseID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}
