package services

import (
	"context"
	"fmt"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/mailer"
	"github.com/farellandr/coursehub/internal/metrics"
	"github.com/farellandr/coursehub/internal/repositories"
)

type NotifyResult struct {
	CourseID uint
	Status   string
	Sent     int
	Failed   []string
}

type NotificationService struct {
	courses       repositories.CourseRepository
	subscriptions repositories.SubscriptionRepository
	sender        mailer.Sender
	from          string
}

func NewNotificationService(
	courses repositories.CourseRepository,
	subscriptions repositories.SubscriptionRepository,
	sender mailer.Sender,
	from string,
) *NotificationService {
	return &NotificationService{courses: courses, subscriptions: subscriptions, sender: sender, from: from}
}

// NotifyCourseUpdated emails every subscriber of the course. A failed send
// is recorded in the result and delivery continues with the next address.
func (s *NotificationService) NotifyCourseUpdated(ctx context.Context, courseID uint) NotifyResult {
	log := logger.FromContext(ctx).With("course_id", courseID)
	result := NotifyResult{CourseID: courseID}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if apperrors.From(err).Code == apperrors.CodeNotFound {
			result.Status = fmt.Sprintf("course %d not found", courseID)
		} else {
			result.Status = fmt.Sprintf("course %d lookup failed", courseID)
			log.Error("loading course for notification", "error", err)
		}
		return result
	}

	subscribers, err := s.subscriptions.ListSubscribers(ctx, courseID)
	if err != nil {
		log.Error("listing subscribers", "error", err)
		result.Status = fmt.Sprintf("course %d subscribers unavailable", courseID)
		return result
	}

	subject := fmt.Sprintf("Course update: %s", course.Name)
	body := fmt.Sprintf("Course %s has been updated. Check out the new materials!", course.Name)

	for _, user := range subscribers {
		err := s.sender.Send(mailer.Message{From: s.from, To: user.Email, Subject: subject, Body: body})
		if err != nil {
			log.Warn("course update email failed", "to", user.Email, "error", err)
			metrics.NotificationEmails.WithLabelValues("failed").Inc()
			result.Failed = append(result.Failed, user.Email)
			continue
		}
		metrics.NotificationEmails.WithLabelValues("sent").Inc()
		result.Sent++
	}

	result.Status = fmt.Sprintf("notified %d of %d subscribers of course %s", result.Sent, len(subscribers), course.Name)
	return result
}
