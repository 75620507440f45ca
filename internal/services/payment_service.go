package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/checkout"
	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/metrics"
	"github.com/farellandr/coursehub/internal/models"
	"github.com/farellandr/coursehub/internal/policy"
	"github.com/farellandr/coursehub/internal/repositories"
)

type TargetKind int

const (
	TargetCourse TargetKind = iota + 1
	TargetLesson
)

// PaymentTarget names the single item a payment is for. The zero value is
// invalid; build it with NewPaymentTarget.
type PaymentTarget struct {
	kind TargetKind
	id   uint
}

func NewPaymentTarget(courseID, lessonID *uint) (PaymentTarget, error) {
	switch {
	case courseID != nil && lessonID == nil:
		return PaymentTarget{kind: TargetCourse, id: *courseID}, nil
	case lessonID != nil && courseID == nil:
		return PaymentTarget{kind: TargetLesson, id: *lessonID}, nil
	}
	return PaymentTarget{}, apperrors.ErrInvalidTarget
}

func (t PaymentTarget) Kind() TargetKind { return t.kind }
func (t PaymentTarget) ID() uint         { return t.id }

type PaymentRequest struct {
	CourseID *uint
	LessonID *uint
	Method   string
}

// CurrencyConverter converts a local amount into the settlement currency.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount int64) (int64, error)
	SettlementCurrency() string
}

type PaymentService struct {
	courses   repositories.CourseRepository
	lessons   repositories.LessonRepository
	payments  repositories.PaymentRepository
	converter CurrencyConverter
	provider  checkout.Provider
}

func NewPaymentService(
	courses repositories.CourseRepository,
	lessons repositories.LessonRepository,
	payments repositories.PaymentRepository,
	converter CurrencyConverter,
	provider checkout.Provider,
) *PaymentService {
	return &PaymentService{
		courses:   courses,
		lessons:   lessons,
		payments:  payments,
		converter: converter,
		provider:  provider,
	}
}

type payable struct {
	name        string
	description string
	price       int64
}

// Initiate creates a checkout session for the requested course or lesson
// and records it. Nothing is persisted unless every provider call
// succeeded.
func (s *PaymentService) Initiate(ctx context.Context, p *policy.Principal, req PaymentRequest) (*models.Payment, error) {
	if p == nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	target, err := NewPaymentTarget(req.CourseID, req.LessonID)
	if err != nil {
		return nil, err
	}
	method, err := normalizeMethod(req.Method)
	if err != nil {
		return nil, err
	}

	item, err := s.resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With("target_kind", int(target.kind), "target_id", target.id)

	converted, err := s.converter.Convert(ctx, item.price)
	if err != nil {
		log.Error("currency conversion failed", "error", err)
		metrics.PaymentsInitiated.WithLabelValues("currency_error").Inc()
		return nil, apperrors.ErrCurrencyLookupFailed.WithError(err)
	}

	if converted < 0 || converted > math.MaxInt64/100 {
		log.Warn("converted amount out of range", "amount", converted)
		metrics.PaymentsInitiated.WithLabelValues("invalid_amount").Inc()
		return nil, apperrors.ErrValidation.WithMessage("price is out of range for checkout")
	}

	productID, err := s.provider.CreateProduct(ctx, item.name, item.description)
	if err != nil {
		return nil, s.providerFailure(log, "create product", err)
	}
	priceID, err := s.provider.CreatePrice(ctx, productID, converted*100, s.converter.SettlementCurrency())
	if err != nil {
		return nil, s.providerFailure(log, "create price", err)
	}
	session, err := s.provider.CreateCheckoutSession(ctx, priceID)
	if err != nil {
		return nil, s.providerFailure(log, "create checkout session", err)
	}

	payment := &models.Payment{
		UserID:        p.UserID,
		Amount:        item.price,
		PaymentMethod: method,
		SessionID:     session.ID,
		Link:          session.URL,
	}
	switch target.kind {
	case TargetCourse:
		payment.CourseID = &target.id
	case TargetLesson:
		payment.LessonID = &target.id
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	metrics.PaymentsInitiated.WithLabelValues("created").Inc()
	log.Info("payment initiated", "payment_id", payment.ID, "session_id", session.ID)
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, p *policy.Principal, filter repositories.PaymentFilter) ([]models.Payment, error) {
	if p == nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return s.payments.ListByUser(ctx, p.UserID, filter)
}

func (s *PaymentService) Get(ctx context.Context, p *policy.Principal, id uint) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionRetrieve, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) resolve(ctx context.Context, target PaymentTarget) (payable, error) {
	switch target.kind {
	case TargetCourse:
		course, err := s.courses.FindByID(ctx, target.id)
		if err != nil {
			return payable{}, err
		}
		return payable{name: course.Name, description: course.Description, price: course.Price}, nil
	case TargetLesson:
		lesson, err := s.lessons.FindByID(ctx, target.id)
		if err != nil {
			return payable{}, err
		}
		return payable{name: lesson.Name, description: lesson.Description, price: lesson.Price}, nil
	}
	return payable{}, apperrors.ErrInvalidTarget
}

func (s *PaymentService) providerFailure(log *slog.Logger, step string, err error) error {
	log.Error("payment provider call failed", "step", step, "error", err)
	metrics.PaymentsInitiated.WithLabelValues("provider_error").Inc()

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Provider("payment provider timed out", err)
	}
	var perr *checkout.Error
	if errors.As(err, &perr) {
		return apperrors.Provider(perr.Message, err)
	}
	return apperrors.Provider(err.Error(), err)
}

func normalizeMethod(method string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(method)); m {
	case "":
		return models.PaymentMethodCash, nil
	case models.PaymentMethodCash, models.PaymentMethodTransfer:
		return m, nil
	}
	return "", apperrors.ErrValidation.WithMessage("payment_method must be cash or transfer")
}
