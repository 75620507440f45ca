package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/services"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		City:     req.City,
	})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"message": "User registered successfully.", "id": user.ID})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, tokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	access, err := h.users.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, tokenResponse{Access: access})
}
