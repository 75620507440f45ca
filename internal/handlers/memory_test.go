package handlers

import (
	"context"
	"sort"
	"sync"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/models"
)

// memory backs the course, lesson and subscription repositories for the
// handler tests.
type memory struct {
	mu      sync.Mutex
	nextID  uint
	courses map[uint]*models.Course
	lessons map[uint]*models.Lesson
	subs    map[uint]*models.Subscription
}

func newMemory() *memory {
	return &memory{
		courses: map[uint]*models.Course{},
		lessons: map[uint]*models.Lesson{},
		subs:    map[uint]*models.Subscription{},
	}
}

func (m *memory) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memory) seedCourse(c models.Course) *models.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.courses[c.ID] = &c
	return &c
}

func (m *memory) seedLesson(l models.Lesson) *models.Lesson {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = m.id()
	m.lessons[l.ID] = &l
	return &l
}

type memCourses struct{ *memory }

func (r memCourses) List(_ context.Context, offset, limit int) ([]models.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.Course, 0, len(r.courses))
	for _, c := range r.courses {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (r memCourses) LessonCounts(_ context.Context, ids []uint) (map[uint]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[uint]int64{}
	for _, l := range r.lessons {
		counts[l.CourseID]++
	}
	return counts, nil
}

func (r memCourses) FindByID(_ context.Context, id uint) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.NotFound("Course")
	}
	cp := *c
	return &cp, nil
}

func (r memCourses) FindWithLessons(ctx context.Context, id uint) (*models.Course, error) {
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

func (r memCourses) Create(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r memCourses) Save(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r memCourses) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.courses, id)
	for lid, l := range r.lessons {
		if l.CourseID == id {
			delete(r.lessons, lid)
		}
	}
	for sid, s := range r.subs {
		if s.CourseID == id {
			delete(r.subs, sid)
		}
	}
	return nil
}

type memLessons struct{ *memory }

func (r memLessons) List(_ context.Context, offset, limit int) ([]models.Lesson, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.Lesson, 0, len(r.lessons))
	for _, l := range r.lessons {
		all = append(all, *l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset > len(all) {
		offset = len(all)
	}
	return all[offset:min(offset+limit, len(all))], int64(len(all)), nil
}

func (r memLessons) FindByID(_ context.Context, id uint) (*models.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lessons[id]
	if !ok {
		return nil, apperrors.NotFound("Lesson")
	}
	cp := *l
	return &cp, nil
}

func (r memLessons) Create(_ context.Context, l *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.id()
	cp := *l
	r.lessons[l.ID] = &cp
	return nil
}

func (r memLessons) Save(_ context.Context, l *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.lessons[l.ID] = &cp
	return nil
}

func (r memLessons) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lessons, id)
	return nil
}

type memSubscriptions struct{ *memory }

func (r memSubscriptions) Find(_ context.Context, userID, courseID uint) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.UserID == userID && s.CourseID == courseID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("Subscription")
}

func (r memSubscriptions) Create(_ context.Context, s *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.UserID == s.UserID && existing.CourseID == s.CourseID {
			return apperrors.ErrDuplicateSubscription
		}
	}
	s.ID = r.id()
	cp := *s
	r.subs[s.ID] = &cp
	return nil
}

func (r memSubscriptions) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
	return nil
}

func (r memSubscriptions) ListByUser(_ context.Context, userID uint) ([]models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Subscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r memSubscriptions) ListSubscribers(context.Context, uint) ([]models.User, error) {
	return nil, nil
}
