package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/middleware"
	"github.com/farellandr/coursehub/internal/models"
	"github.com/farellandr/coursehub/internal/services"
)

type LessonRequest struct {
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description" binding:"omitempty,youtube"`
	Price       *int64  `json:"price" form:"price" binding:"omitempty,min=0,max=1000000000"`
	VideoURL    *string `json:"video_url" form:"video_url"`
	Course      *uint   `json:"course" form:"course"`
}

func (r LessonRequest) input() services.LessonInput {
	return services.LessonInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		VideoURL:    r.VideoURL,
		CourseID:    r.Course,
	}
}

func (h *Handler) ListLessons(c *gin.Context) {
	page, limit, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.catalog.ListLessons(c.Request.Context(), middleware.CurrentPrincipal(c), services.Page{Number: page, Size: limit})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, pageResponse[models.Lesson]{Results: list.Items, PageInfo: list.PageInfo})
}

func (h *Handler) CreateLesson(c *gin.Context) {
	var req LessonRequest
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
	image, err := h.uploadImage(c, "image", "lessons")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	in.Image = image

	lesson, err := h.catalog.CreateLesson(c.Request.Context(), p, in)
	if err != nil {
		removeUpload(image)
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusCreated, lesson)
}

func (h *Handler) GetLesson(c *gin.Context) {
	id, err := helpers.ParseID(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid lesson ID.")
		return
	}

	lesson, err := h.catalog.GetLesson(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, lesson)
}

func (h *Handler) UpdateLesson(c *gin.Context) {
	id, err := helpers.ParseID(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid lesson ID.")
		return
	}

	var req LessonRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if c.Request.Method == http.MethodPut && (req.Name == nil || req.Course == nil) {
		helpers.RespondWithAppError(c, apperrors.ErrValidation.WithMessage("name and course are required"))
		return
	}

	p := middleware.CurrentPrincipal(c)
	current, err := h.catalog.LessonForUpdate(c.Request.Context(), p, id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	previous := current.Image

	in := req.input()
	image, err := h.uploadImage(c, "image", "lessons")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	in.Image = image

	lesson, err := h.catalog.UpdateLesson(c.Request.Context(), p, id, in)
	if err != nil {
		removeUpload(image)
		helpers.RespondWithAppError(c, err)
		return
	}
	removeReplaced(previous, image)

	respond(c, http.StatusOK, lesson)
}

func (h *Handler) DeleteLesson(c *gin.Context) {
	id, err := helpers.ParseID(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid lesson ID.")
		return
	}

	if err := h.catalog.DeleteLesson(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusNoContent, nil)
}
