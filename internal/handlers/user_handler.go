package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/middleware"
	"github.com/farellandr/coursehub/internal/services"
)

type ProfileRequest struct {
	Phone *string `json:"phone" form:"phone"`
	City  *string `json:"city" form:"city"`
}

func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	p := middleware.CurrentPrincipal(c)
	current, err := h.users.Profile(c.Request.Context(), p)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	previous := current.Avatar

	avatar, err := h.uploadImage(c, "avatar", "avatars")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), p, services.ProfileInput{
		Phone:  req.Phone,
		City:   req.City,
		Avatar: avatar,
	})
	if err != nil {
		removeUpload(avatar)
		helpers.RespondWithAppError(c, err)
		return
	}
	removeReplaced(previous, avatar)

	respond(c, http.StatusOK, user)
}
