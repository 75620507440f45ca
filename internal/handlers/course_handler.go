package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/middleware"
	"github.com/farellandr/coursehub/internal/services"
)

type CourseRequest struct {
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
	Price       *int64  `json:"price" form:"price" binding:"omitempty,min=0,max=1000000000"`
}

func (r CourseRequest) input() services.CourseInput {
	return services.CourseInput{Name: r.Name, Description: r.Description, Price: r.Price}
}

func (h *Handler) ListCourses(c *gin.Context) {
	page, limit, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.catalog.ListCourses(c.Request.Context(), middleware.CurrentPrincipal(c), services.Page{Number: page, Size: limit})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, pageResponse[services.CourseSummary]{Results: list.Items, PageInfo: list.PageInfo})
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Name == nil {
		helpers.RespondWithAppError(c, apperrors.ErrValidation.WithMessage("name is required"))
		return
	}

	p := middleware.CurrentPrincipal(c)
	if err := h.catalog.AuthorizeCreate(p); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	in := req.input()
	image, err := h.uploadImage(c, "image", "courses")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	in.Image = image

	course, err := h.catalog.CreateCourse(c.Request.Context(), p, in)
	if err != nil {
		removeUpload(image)
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusCreated, course)
}

func (h *Handler) GetCourse(c *gin.Context) {
	id, err := helpers.ParseID(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid course ID.")
		return
	}

	detail, err := h.catalog.GetCourse(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, courseDetailResponse{
		Course:          detail.Course,
		Lessons:         detail.Lessons,
		NumberOfLessons: len(detail.Lessons),
	})
}

// UpdateCourse serves both PUT and PATCH. PUT must carry the name.
func (h *Handler) UpdateCourse(c *gin.Context) {
	id, err := helpers.ParseID(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid course ID.")
		return
	}

	var req CourseRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if c.Request.Method == http.MethodPut && req.Name == nil {
		helpers.RespondWithAppError(c, apperrors.ErrValidation.WithMessage("name is required"))
		return
	}

	p := middleware.CurrentPrincipal(c)
	current, err := h.catalog.CourseForUpdate(c.Request.Context(), p, id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	previous := current.Image

	in := req.input()
	image, err := h.uploadImage(c, "image", "courses")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	in.Image = image

	course, err := h.catalog.UpdateCourse(c.Request.Context(), p, id, in)
	if err != nil {
		removeUpload(image)
		helpers.RespondWithAppError(c, err)
		return
	}
	removeReplaced(previous, image)

	respond(c, http.StatusOK, course)
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	id, err := helpers.ParseID(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid course ID.")
		return
	}

	if err := h.catalog.DeleteCourse(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusNoContent, nil)
}

// uploadImage stores the multipart file under field, if the request has
// one, and returns its path.
func (h *Handler) uploadImage(c *gin.Context, field, uploadType string) (*string, error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, nil
	}
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}

	path, err := helpers.UploadFile(c, fileHeader, uploadType, h.uploads)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func removeUpload(path *string) {
	if path != nil {
		_ = helpers.DeleteFile(*path)
	}
}

// removeReplaced deletes previous once a new upload has taken its place.
func removeReplaced(previous string, uploaded *string) {
	if uploaded != nil && previous != "" && previous != *uploaded {
		_ = helpers.DeleteFile(previous)
	}
}
