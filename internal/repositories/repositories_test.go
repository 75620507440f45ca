package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/models"
)

// openTestDB connects to TEST_DATABASE_DSN and empties every table. Tests
// are skipped when the variable is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Lesson{}, &models.Subscription{}, &models.Payment{}))
	require.NoError(t, db.Exec("TRUNCATE payments, subscriptions, lessons, courses, users RESTART IDENTITY CASCADE").Error)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x", IsActive: true}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedCourse(t *testing.T, db *gorm.DB, owner *models.User) *models.Course {
	t.Helper()
	c := &models.Course{Name: "Go", Price: 100, OwnerID: &owner.ID}
	require.NoError(t, NewCourseRepository(db).Create(context.Background(), c))
	return c
}

func TestSubscriptionUniqueness(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "a@example.com")
	course := seedCourse(t, db, user)
	subs := NewSubscriptionRepository(db)

	require.NoError(t, subs.Create(ctx, &models.Subscription{UserID: user.ID, CourseID: course.ID}))

	err := subs.Create(ctx, &models.Subscription{UserID: user.ID, CourseID: course.ID})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateSubscription)

	found, err := subs.Find(ctx, user.ID, course.ID)
	require.NoError(t, err)

	subscribers, err := subs.ListSubscribers(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, "a@example.com", subscribers[0].Email)

	require.NoError(t, subs.Delete(ctx, found.ID))
	_, err = subs.Find(ctx, user.ID, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserEmailTaken(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "dup@example.com")

	err := NewUserRepository(db).Create(context.Background(), &models.User{Email: "dup@example.com", Password: "y"})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestCourseDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "owner@example.com")
	course := seedCourse(t, db, user)

	lessons := NewLessonRepository(db)
	require.NoError(t, lessons.Create(ctx, &models.Lesson{Name: "Intro", CourseID: course.ID}))
	require.NoError(t, lessons.Create(ctx, &models.Lesson{Name: "Types", CourseID: course.ID}))
	require.NoError(t, NewSubscriptionRepository(db).Create(ctx, &models.Subscription{UserID: user.ID, CourseID: course.ID}))

	courses := NewCourseRepository(db)
	counts, err := courses.LessonCounts(ctx, []uint{course.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[course.ID])

	withLessons, err := courses.FindWithLessons(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, withLessons.Lessons, 2)

	require.NoError(t, courses.Delete(ctx, course.ID))

	var lessonCount, subCount int64
	require.NoError(t, db.Model(&models.Lesson{}).Count(&lessonCount).Error)
	require.NoError(t, db.Model(&models.Subscription{}).Count(&subCount).Error)
	assert.Zero(t, lessonCount)
	assert.Zero(t, subCount)

	_, err = courses.FindByID(ctx, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, courses.Delete(ctx, course.ID), apperrors.ErrNotFound)
}

func TestPaymentSingleTargetConstraint(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "payer@example.com")
	course := seedCourse(t, db, user)
	lesson := &models.Lesson{Name: "Intro", CourseID: course.ID}
	require.NoError(t, NewLessonRepository(db).Create(ctx, lesson))

	payments := NewPaymentRepository(db)

	both := &models.Payment{UserID: user.ID, CourseID: &course.ID, LessonID: &lesson.ID, Amount: 100}
	assert.Error(t, payments.Create(ctx, both))

	neither := &models.Payment{UserID: user.ID, Amount: 100}
	assert.Error(t, payments.Create(ctx, neither))

	ok := &models.Payment{UserID: user.ID, CourseID: &course.ID, Amount: 100, PaymentMethod: models.PaymentMethodTransfer}
	require.NoError(t, payments.Create(ctx, ok))

	listed, err := payments.ListByUser(ctx, user.ID, PaymentFilter{Method: "TRANSFER"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, ok.ID, listed[0].ID)

	listed, err = payments.ListByUser(ctx, user.ID, PaymentFilter{LessonID: &lesson.ID})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestFindInactiveSince(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	now := time.Now().UTC()

	stale := seedUser(t, db, "stale@example.com")
	fresh := seedUser(t, db, "fresh@example.com")
	seedUser(t, db, "never@example.com")
	require.NoError(t, users.TouchLastLogin(ctx, stale.ID, now.Add(-60*24*time.Hour)))
	require.NoError(t, users.TouchLastLogin(ctx, fresh.ID, now.Add(-time.Hour)))

	found, err := users.FindInactiveSince(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)

	changed, err := users.DeactivateIfInactive(ctx, fresh.ID, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = users.DeactivateIfInactive(ctx, stale.ID, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	found, err = users.FindInactiveSince(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDeactivateIfInactiveKeepsRecentLogin(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	now := time.Now().UTC()
	cutoff := now.Add(-30 * 24 * time.Hour)

	user := seedUser(t, db, "returning@example.com")
	require.NoError(t, users.TouchLastLogin(ctx, user.ID, now.Add(-60*24*time.Hour)))

	found, err := users.FindInactiveSince(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, users.TouchLastLogin(ctx, user.ID, now))

	changed, err := users.DeactivateIfInactive(ctx, user.ID, cutoff)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.LastLogin)
	assert.WithinDuration(t, now, *stored.LastLogin, time.Second)
}
