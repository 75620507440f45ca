package services

import (
	"context"
	"time"

	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/metrics"
	"github.com/farellandr/coursehub/internal/repositories"
)

type MaintenanceService struct {
	users     repositories.UserRepository
	threshold time.Duration
	now       func() time.Time
}

func NewMaintenanceService(users repositories.UserRepository, threshold time.Duration) *MaintenanceService {
	return &MaintenanceService{users: users, threshold: threshold, now: time.Now}
}

// DeactivateInactiveUsers marks every active user whose last login is older
// than the threshold as inactive. Each row is re-checked on write, so a user
// who logs in after the scan stays active. A failed update is logged and
// skipped.
func (s *MaintenanceService) DeactivateInactiveUsers(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.threshold)

	users, err := s.users.FindInactiveSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx)
	deactivated := 0
	for _, user := range users {
		changed, err := s.users.DeactivateIfInactive(ctx, user.ID, cutoff)
		if err != nil {
			log.Error("deactivating user", "user_id", user.ID, "error", err)
			continue
		}
		if !changed {
			log.Debug("user became active before deactivation", "user_id", user.ID)
			continue
		}
		deactivated++
		log.Info("user deactivated for inactivity", "user_id", user.ID, "email", user.Email)
	}

	metrics.UsersDeactivated.Add(float64(deactivated))
	return deactivated, nil
}
