package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/models"
)

type PaymentFilter struct {
	CourseID *uint
	LessonID *uint
	Method   string
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	ListByUser(ctx context.Context, userID uint, filter PaymentFilter) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

var errPaymentNotFound = apperrors.NotFound("Payment")

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, translate(err, errPaymentNotFound)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uint, filter PaymentFilter) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if filter.LessonID != nil {
		query = query.Where("lesson_id = ?", *filter.LessonID)
	}
	if filter.Method != "" {
		query = query.Where("LOWER(payment_method) = LOWER(?)", filter.Method)
	}

	var payments []models.Payment
	if err := query.Order("paid_at DESC").Find(&payments).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return payments, nil
}
