package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/middleware"
	"github.com/farellandr/coursehub/internal/repositories"
	"github.com/farellandr/coursehub/internal/services"
)

type PaymentRequest struct {
	PayCourse     *uint  `json:"pay_course"`
	PayLesson     *uint  `json:"pay_lesson"`
	PaymentMethod string `json:"payment_method"`
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p := middleware.CurrentPrincipal(c)
	payment, err := h.payments.Initiate(c.Request.Context(), p, services.PaymentRequest{
		CourseID: req.PayCourse,
		LessonID: req.PayLesson,
		Method:   req.PaymentMethod,
	})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusCreated, paymentLinkResponse{
		ID:        payment.ID,
		SessionID: payment.SessionID,
		Link:      payment.Link,
		Amount:    payment.Amount,
		User:      p.Email,
	})
}

func (h *Handler) ListPayments(c *gin.Context) {
	courseID, err := helpers.ParseOptionalID(c, "pay_course")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	lessonID, err := helpers.ParseOptionalID(c, "pay_lesson")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	payments, err := h.payments.List(c.Request.Context(), middleware.CurrentPrincipal(c), repositories.PaymentFilter{
		CourseID: courseID,
		LessonID: lessonID,
		Method:   c.Query("payment_method"),
	})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	respond(c, http.StatusOK, payments)
}

// PaymentQR renders the checkout link of a payment as a PNG QR code.
func (h *Handler) PaymentQR(c *gin.Context) {
	id, err := helpers.ParseID(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	payment, err := h.payments.Get(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	qrImage, err := qrcode.Encode(payment.Link, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithAppError(c, apperrors.Internal(err))
		return
	}

	respond(c, http.StatusOK, qrImage)
}
