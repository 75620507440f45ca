package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/middleware"
	"github.com/farellandr/coursehub/internal/services"
)

func (h *Handler) ToggleSubscription(c *gin.Context) {
	courseID, err := helpers.ParseID(c, "course_id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid course ID.")
		return
	}

	state, err := h.subscriptions.Toggle(c.Request.Context(), middleware.CurrentPrincipal(c), courseID)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	if state == services.SubscriptionAdded {
		respond(c, http.StatusCreated, message("Subscription added."))
		return
	}
	respond(c, http.StatusOK, message("Subscription removed."))
}

func (h *Handler) ListSubscriptions(c *gin.Context) {
	subs, err := h.subscriptions.ListForUser(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, subs)
}
