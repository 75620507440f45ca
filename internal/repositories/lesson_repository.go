package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/models"
)

type LessonRepository interface {
	List(ctx context.Context, offset, limit int) ([]models.Lesson, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Save(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id uint) error
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

var errLessonNotFound = apperrors.NotFound("Lesson")

func (r *lessonRepository) List(ctx context.Context, offset, limit int) ([]models.Lesson, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Lesson{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err)
	}

	var lessons []models.Lesson
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&lessons).Error; err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return lessons, total, nil
}

func (r *lessonRepository) FindByID(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, translate(err, errLessonNotFound)
	}
	return &lesson, nil
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *lessonRepository) Save(ctx context.Context, lesson *models.Lesson) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Save(lesson).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *lessonRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Lesson{}, id)
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return errLessonNotFound
	}
	return nil
}
