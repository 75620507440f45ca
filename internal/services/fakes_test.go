package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/checkout"
	"github.com/farellandr/coursehub/internal/mailer"
	"github.com/farellandr/coursehub/internal/models"
	"github.com/farellandr/coursehub/internal/repositories"
)

// store is an in-memory stand-in for the database shared by the fake
// repositories below. It mirrors the unique and cascade constraints.
type store struct {
	mu            sync.Mutex
	nextID        uint
	users         map[uint]*models.User
	courses       map[uint]*models.Course
	lessons       map[uint]*models.Lesson
	subscriptions map[uint]*models.Subscription
	payments      map[uint]*models.Payment
	writes        int
}

func newStore() *store {
	return &store{
		users:         map[uint]*models.User{},
		courses:       map[uint]*models.Course{},
		lessons:       map[uint]*models.Lesson{},
		subscriptions: map[uint]*models.Subscription{},
		payments:      map[uint]*models.Payment{},
	}
}

func (s *store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *store) addUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	s.users[u.ID] = &u
	return &u
}

func (s *store) addCourse(c models.Course) *models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.courses[c.ID] = &c
	return &c
}

func (s *store) addLesson(l models.Lesson) *models.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.id()
	s.lessons[l.ID] = &l
	return &l
}

type fakeCourseRepo struct{ *store }

func (r fakeCourseRepo) List(_ context.Context, offset, limit int) ([]models.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Course
	for _, c := range r.courses {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r fakeCourseRepo) LessonCounts(_ context.Context, ids []uint) (map[uint]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[uint]int64{}
	for _, l := range r.lessons {
		counts[l.CourseID]++
	}
	return counts, nil
}

func (r fakeCourseRepo) FindByID(_ context.Context, id uint) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.NotFound("Course")
	}
	cp := *c
	return &cp, nil
}

func (r fakeCourseRepo) FindWithLessons(ctx context.Context, id uint) (*models.Course, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lessons {
		if l.CourseID == id {
			c.Lessons = append(c.Lessons, *l)
		}
	}
	sort.Slice(c.Lessons, func(i, j int) bool { return c.Lessons[i].ID < c.Lessons[j].ID })
	return c, nil
}

func (r fakeCourseRepo) Create(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	cp := *c
	r.courses[c.ID] = &cp
	r.writes++
	return nil
}

func (r fakeCourseRepo) Save(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.UpdatedAt = time.Now()
	cp := *c
	r.courses[c.ID] = &cp
	r.writes++
	return nil
}

func (r fakeCourseRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return apperrors.NotFound("Course")
	}
	delete(r.courses, id)
	for lid, l := range r.lessons {
		if l.CourseID == id {
			delete(r.lessons, lid)
		}
	}
	for sid, sub := range r.subscriptions {
		if sub.CourseID == id {
			delete(r.subscriptions, sid)
		}
	}
	r.writes++
	return nil
}

type fakeLessonRepo struct{ *store }

func (r fakeLessonRepo) List(_ context.Context, offset, limit int) ([]models.Lesson, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Lesson
	for _, l := range r.lessons {
		all = append(all, *l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r fakeLessonRepo) FindByID(_ context.Context, id uint) (*models.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lessons[id]
	if !ok {
		return nil, apperrors.NotFound("Lesson")
	}
	cp := *l
	return &cp, nil
}

func (r fakeLessonRepo) Create(_ context.Context, l *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.id()
	cp := *l
	r.lessons[l.ID] = &cp
	r.writes++
	return nil
}

func (r fakeLessonRepo) Save(_ context.Context, l *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.lessons[l.ID] = &cp
	r.writes++
	return nil
}

func (r fakeLessonRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lessons[id]; !ok {
		return apperrors.NotFound("Lesson")
	}
	delete(r.lessons, id)
	r.writes++
	return nil
}

type fakeSubscriptionRepo struct{ *store }

func (r fakeSubscriptionRepo) Find(_ context.Context, userID, courseID uint) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subscriptions {
		if s.UserID == userID && s.CourseID == courseID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("Subscription")
}

func (r fakeSubscriptionRepo) Create(_ context.Context, sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subscriptions {
		if s.UserID == sub.UserID && s.CourseID == sub.CourseID {
			return apperrors.ErrDuplicateSubscription
		}
	}
	sub.ID = r.id()
	cp := *sub
	r.subscriptions[sub.ID] = &cp
	r.writes++
	return nil
}

func (r fakeSubscriptionRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscriptions[id]; !ok {
		return apperrors.NotFound("Subscription")
	}
	delete(r.subscriptions, id)
	r.writes++
	return nil
}

func (r fakeSubscriptionRepo) ListByUser(_ context.Context, userID uint) ([]models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Subscription
	for _, s := range r.subscriptions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r fakeSubscriptionRepo) ListSubscribers(_ context.Context, courseID uint) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, s := range r.subscriptions {
		if s.CourseID == courseID {
			out = append(out, *r.users[s.UserID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePaymentRepo struct{ *store }

func (r fakePaymentRepo) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if (p.CourseID == nil) == (p.LessonID == nil) {
		return apperrors.Internal(errors.New("violates check constraint chk_payments_single_target"))
	}
	p.ID = r.id()
	p.PaidAt = time.Now()
	cp := *p
	r.payments[p.ID] = &cp
	r.writes++
	return nil
}

func (r fakePaymentRepo) FindByID(_ context.Context, id uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, apperrors.NotFound("Payment")
	}
	cp := *p
	return &cp, nil
}

func (r fakePaymentRepo) ListByUser(_ context.Context, userID uint, f repositories.PaymentFilter) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.UserID != userID {
			continue
		}
		if f.CourseID != nil && (p.CourseID == nil || *p.CourseID != *f.CourseID) {
			continue
		}
		if f.LessonID != nil && (p.LessonID == nil || *p.LessonID != *f.LessonID) {
			continue
		}
		if f.Method != "" && !strings.EqualFold(p.PaymentMethod, f.Method) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeUserRepo struct {
	*store
	failDeactivate map[uint]bool
}

func (r fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailTaken
		}
	}
	u.ID = r.id()
	cp := *u
	r.users[u.ID] = &cp
	r.writes++
	return nil
}

func (r fakeUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (r fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("User")
}

func (r fakeUserRepo) SaveProfile(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return apperrors.NotFound("User")
	}
	stored.Phone = u.Phone
	stored.City = u.City
	stored.Avatar = u.Avatar
	r.writes++
	return nil
}

func (r fakeUserRepo) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.NotFound("User")
	}
	u.LastLogin = &at
	r.writes++
	return nil
}

func (r fakeUserRepo) FindInactiveSince(_ context.Context, threshold time.Time) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.IsActive && u.LastLogin != nil && !u.LastLogin.After(threshold) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeUserRepo) DeactivateIfInactive(_ context.Context, id uint, cutoff time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDeactivate[id] {
		return false, apperrors.Internal(errors.New("connection reset"))
	}
	u, ok := r.users[id]
	if !ok || !u.IsActive || u.LastLogin == nil || u.LastLogin.After(cutoff) {
		return false, nil
	}
	u.IsActive = false
	r.writes++
	return true, nil
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) CreateProduct(ctx context.Context, name, description string) (string, error) {
	args := m.Called(ctx, name, description)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
	args := m.Called(ctx, productID, unitAmount, currency)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, priceID string) (checkout.Session, error) {
	args := m.Called(ctx, priceID)
	return args.Get(0).(checkout.Session), args.Error(1)
}

type mockConverter struct{ mock.Mock }

func (m *mockConverter) Convert(ctx context.Context, amount int64) (int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockConverter) SettlementCurrency() string { return "USD" }

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(msg mailer.Message) error {
	return m.Called(msg).Error(0)
}

type recordingNotifier struct {
	mu  sync.Mutex
	ids []uint
}

func (n *recordingNotifier) Enqueue(courseID uint) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, courseID)
	return true
}

func ptr[T any](v T) *T { return &v }
