package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/models"
	"github.com/farellandr/coursehub/internal/services"
)

// responseShape is the body layout of an endpoint.
type responseShape int

const (
	shapeResource responseShape = iota
	shapePage
	shapeCourseDetail
	shapeMessage
	shapeEmpty
	shapeTokens
	shapePaymentLink
	shapeImage
)

func (s responseShape) String() string {
	switch s {
	case shapeResource:
		return "resource"
	case shapePage:
		return "page"
	case shapeCourseDetail:
		return "course_detail"
	case shapeMessage:
		return "message"
	case shapeEmpty:
		return "empty"
	case shapeTokens:
		return "tokens"
	case shapePaymentLink:
		return "payment_link"
	case shapeImage:
		return "image"
	}
	return "unknown"
}

// shapeFor picks the response layout of a route. Unknown pairs render the
// resource as is.
func shapeFor(route, method string) responseShape {
	switch route {
	case PathRegister:
		return shapeMessage
	case PathToken, PathTokenRefresh:
		return shapeTokens
	case PathCourses:
		if method == http.MethodGet {
			return shapePage
		}
	case PathCourse:
		switch method {
		case http.MethodGet:
			return shapeCourseDetail
		case http.MethodDelete:
			return shapeEmpty
		}
	case PathLessonList:
		return shapePage
	case PathLessonDelete:
		return shapeEmpty
	case PathSubscribe:
		return shapeMessage
	case PathPayment:
		return shapePaymentLink
	case PathPaymentQR:
		return shapeImage
	}
	return shapeResource
}

type pageResponse[T any] struct {
	Results []T `json:"results"`
	services.PageInfo
}

type courseDetailResponse struct {
	*models.Course
	Lessons         []models.Lesson `json:"lessons"`
	NumberOfLessons int             `json:"number_of_lessons"`
}

type paymentLinkResponse struct {
	ID        uint   `json:"id"`
	SessionID string `json:"session_id"`
	Link      string `json:"link"`
	Amount    int64  `json:"amount"`
	User      string `json:"user"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// respond writes payload in the layout shapeFor assigns to the matched
// route.
func respond(c *gin.Context, status int, payload any) {
	switch shapeFor(c.FullPath(), c.Request.Method) {
	case shapeEmpty:
		c.Status(http.StatusNoContent)
	case shapeImage:
		data, _ := payload.([]byte)
		c.Data(status, "image/png", data)
	default:
		c.JSON(status, payload)
	}
}

func message(text string) gin.H {
	return gin.H{"message": text}
}

func validationError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.ErrValidation.WithMessage(helpers.ValidationMessage(err))
}
