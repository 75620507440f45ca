package services

import (
	"context"
	"strings"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/models"
	"github.com/farellandr/coursehub/internal/policy"
	"github.com/farellandr/coursehub/internal/repositories"
)

const defaultPrice int64 = 1

// MaxPrice bounds course and lesson prices in the local currency.
const MaxPrice int64 = 1_000_000_000

// UpdateNotifier schedules subscriber notification for a course. Enqueue
// must not block the caller.
type UpdateNotifier interface {
	Enqueue(courseID uint) bool
}

// CourseInput carries the writable course fields. Nil fields are left
// untouched on update.
type CourseInput struct {
	Name        *string
	Description *string
	Price       *int64
	Image       *string
}

type LessonInput struct {
	Name        *string
	Description *string
	Price       *int64
	Image       *string
	VideoURL    *string
	CourseID    *uint
}

type CourseSummary struct {
	models.Course
	LessonCount int64 `json:"lesson_count"`
}

type CourseList struct {
	Items []CourseSummary
	PageInfo
}

type CourseDetail struct {
	Course  *models.Course
	Lessons []models.Lesson
}

type LessonList struct {
	Items []models.Lesson
	PageInfo
}

type CatalogService struct {
	courses  repositories.CourseRepository
	lessons  repositories.LessonRepository
	notifier UpdateNotifier
}

func NewCatalogService(courses repositories.CourseRepository, lessons repositories.LessonRepository, notifier UpdateNotifier) *CatalogService {
	return &CatalogService{courses: courses, lessons: lessons, notifier: notifier}
}

func (s *CatalogService) ListCourses(ctx context.Context, p *policy.Principal, page Page) (*CourseList, error) {
	if err := policy.Authorize(p, policy.ActionList, nil); err != nil {
		return nil, err
	}
	page = page.normalize()

	courses, total, err := s.courses.List(ctx, page.offset(), page.Size)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	counts, err := s.courses.LessonCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		items = append(items, CourseSummary{Course: c, LessonCount: counts[c.ID]})
	}
	return &CourseList{Items: items, PageInfo: newPageInfo(page, total)}, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, p *policy.Principal, id uint) (*CourseDetail, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionRetrieve, course); err != nil {
		return nil, err
	}

	withLessons, err := s.courses.FindWithLessons(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{Course: withLessons, Lessons: withLessons.Lessons}, nil
}

// AuthorizeCreate reports whether p may create courses and lessons.
func (s *CatalogService) AuthorizeCreate(p *policy.Principal) error {
	return policy.Authorize(p, policy.ActionCreate, nil)
}

func (s *CatalogService) CreateCourse(ctx context.Context, p *policy.Principal, in CourseInput) (*models.Course, error) {
	if err := s.AuthorizeCreate(p); err != nil {
		return nil, err
	}

	course := &models.Course{Price: defaultPrice, OwnerID: &p.UserID}
	if err := applyCourseInput(course, in); err != nil {
		return nil, err
	}
	if course.Name == "" {
		return nil, apperrors.ErrValidation.WithMessage("name is required")
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("course created", "course_id", course.ID)
	return course, nil
}

// UpdateCourse applies in to the course and queues a notification for its
// subscribers once the write has committed.
func (s *CatalogService) UpdateCourse(ctx context.Context, p *policy.Principal, id uint, in CourseInput) (*models.Course, error) {
	course, err := s.CourseForUpdate(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if err := applyCourseInput(course, in); err != nil {
		return nil, err
	}
	if course.Name == "" {
		return nil, apperrors.ErrValidation.WithMessage("name is required")
	}
	if err := s.courses.Save(ctx, course); err != nil {
		return nil, err
	}

	if s.notifier != nil && !s.notifier.Enqueue(course.ID) {
		logger.FromContext(ctx).Warn("course update notification dropped", "course_id", course.ID)
	}
	return course, nil
}

// CourseForUpdate loads the course and checks that p may change it.
func (s *CatalogService) CourseForUpdate(ctx context.Context, p *policy.Principal, id uint) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionUpdate, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, p *policy.Principal, id uint) error {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.ActionDelete, course); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("course deleted", "course_id", id)
	return nil
}

func (s *CatalogService) ListLessons(ctx context.Context, p *policy.Principal, page Page) (*LessonList, error) {
	if err := policy.Authorize(p, policy.ActionList, nil); err != nil {
		return nil, err
	}
	page = page.normalize()

	lessons, total, err := s.lessons.List(ctx, page.offset(), page.Size)
	if err != nil {
		return nil, err
	}
	return &LessonList{Items: lessons, PageInfo: newPageInfo(page, total)}, nil
}

func (s *CatalogService) GetLesson(ctx context.Context, p *policy.Principal, id uint) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionRetrieve, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CatalogService) CreateLesson(ctx context.Context, p *policy.Principal, in LessonInput) (*models.Lesson, error) {
	if err := s.AuthorizeCreate(p); err != nil {
		return nil, err
	}
	if in.CourseID == nil {
		return nil, apperrors.ErrValidation.WithMessage("course is required")
	}
	if _, err := s.courses.FindByID(ctx, *in.CourseID); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{Price: defaultPrice, OwnerID: &p.UserID}
	if err := applyLessonInput(lesson, in); err != nil {
		return nil, err
	}
	if lesson.Name == "" {
		return nil, apperrors.ErrValidation.WithMessage("name is required")
	}

	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("lesson created", "lesson_id", lesson.ID, "course_id", lesson.CourseID)
	return lesson, nil
}

func (s *CatalogService) UpdateLesson(ctx context.Context, p *policy.Principal, id uint, in LessonInput) (*models.Lesson, error) {
	lesson, err := s.LessonForUpdate(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if in.CourseID != nil && *in.CourseID != lesson.CourseID {
		if _, err := s.courses.FindByID(ctx, *in.CourseID); err != nil {
			return nil, err
		}
	}
	if err := applyLessonInput(lesson, in); err != nil {
		return nil, err
	}
	if lesson.Name == "" {
		return nil, apperrors.ErrValidation.WithMessage("name is required")
	}
	if err := s.lessons.Save(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// LessonForUpdate loads the lesson and checks that p may change it.
func (s *CatalogService) LessonForUpdate(ctx context.Context, p *policy.Principal, id uint) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionUpdate, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CatalogService) DeleteLesson(ctx context.Context, p *policy.Principal, id uint) error {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.ActionDelete, lesson); err != nil {
		return err
	}
	return s.lessons.Delete(ctx, id)
}

func validatePrice(price int64) error {
	if price < 0 {
		return apperrors.ErrValidation.WithMessage("price must not be negative")
	}
	if price > MaxPrice {
		return apperrors.ErrValidation.WithMessage("price must not exceed 1000000000")
	}
	return nil
}

func applyCourseInput(c *models.Course, in CourseInput) error {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return err
		}
		c.Price = *in.Price
	}
	if in.Image != nil {
		c.Image = *in.Image
	}
	return nil
}

func applyLessonInput(l *models.Lesson, in LessonInput) error {
	if in.Name != nil {
		l.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return err
		}
		l.Price = *in.Price
	}
	if in.Image != nil {
		l.Image = *in.Image
	}
	if in.VideoURL != nil {
		l.VideoURL = *in.VideoURL
	}
	if in.CourseID != nil {
		l.CourseID = *in.CourseID
	}
	return nil
}
