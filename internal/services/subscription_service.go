package services

import (
	"context"
	"errors"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/models"
	"github.com/farellandr/coursehub/internal/policy"
	"github.com/farellandr/coursehub/internal/repositories"
)

type ToggleState int

const (
	SubscriptionAdded ToggleState = iota + 1
	SubscriptionRemoved
)

func (s ToggleState) String() string {
	switch s {
	case SubscriptionAdded:
		return "added"
	case SubscriptionRemoved:
		return "removed"
	}
	return "unknown"
}

type SubscriptionService struct {
	courses       repositories.CourseRepository
	subscriptions repositories.SubscriptionRepository
}

func NewSubscriptionService(courses repositories.CourseRepository, subscriptions repositories.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{courses: courses, subscriptions: subscriptions}
}

// Toggle flips the caller's subscription to the course: an existing row is
// removed, a missing one is created. Two concurrent creates for the same
// pair end with one of them failing on ErrDuplicateSubscription.
func (s *SubscriptionService) Toggle(ctx context.Context, p *policy.Principal, courseID uint) (ToggleState, error) {
	if p == nil {
		return 0, apperrors.ErrAuthenticationRequired
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return 0, err
	}

	existing, err := s.subscriptions.Find(ctx, p.UserID, courseID)
	switch {
	case err == nil:
		if err := s.subscriptions.Delete(ctx, existing.ID); err != nil {
			return 0, err
		}
		logger.FromContext(ctx).Info("subscription removed", "course_id", courseID)
		return SubscriptionRemoved, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return 0, err
	}

	sub := &models.Subscription{UserID: p.UserID, CourseID: courseID}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Info("subscription added", "course_id", courseID)
	return SubscriptionAdded, nil
}

func (s *SubscriptionService) ListForUser(ctx context.Context, p *policy.Principal) ([]models.Subscription, error) {
	if p == nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return s.subscriptions.ListByUser(ctx, p.UserID)
}
