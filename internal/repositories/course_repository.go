package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/models"
)

type CourseRepository interface {
	List(ctx context.Context, offset, limit int) ([]models.Course, int64, error)
	LessonCounts(ctx context.Context, courseIDs []uint) (map[uint]int64, error)
	FindByID(ctx context.Context, id uint) (*models.Course, error)
	FindWithLessons(ctx context.Context, id uint) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Save(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

var errCourseNotFound = apperrors.NotFound("Course")

func (r *courseRepository) List(ctx context.Context, offset, limit int) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err)
	}

	var courses []models.Course
	err := query.Order("id").Offset(offset).Limit(limit).Find(&courses).Error
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return courses, total, nil
}

func (r *courseRepository) LessonCounts(ctx context.Context, courseIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}

func (r *courseRepository) FindByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, translate(err, errCourseNotFound)
	}
	return &course, nil
}

func (r *courseRepository) FindWithLessons(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&course, id).Error
	if err != nil {
		return nil, translate(err, errCourseNotFound)
	}
	return &course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *courseRepository) Save(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Omit("Lessons", "Owner").Save(course).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Delete removes the course. Lessons and subscriptions go with it through
// the ON DELETE CASCADE foreign keys.
func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return errCourseNotFound
	}
	return nil
}
