package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/services"
)

// Route paths. The server registers them and shapeFor keys on them.
const (
	PathRegister      = "/register/"
	PathToken         = "/token/"
	PathTokenRefresh  = "/token/refresh/"
	PathCourses       = "/course/"
	PathCourse        = "/course/:id/"
	PathLessonCreate  = "/lesson/create/"
	PathLessonList    = "/lesson/list/"
	PathLesson        = "/lesson/:id/"
	PathLessonUpdate  = "/lesson/update/:id/"
	PathLessonDelete  = "/lesson/delete/:id/"
	PathSubscribe     = "/subscribe/:course_id/"
	PathSubscriptions = "/subscriptions/"
	PathPayment       = "/payment/"
	PathPayments      = "/payments/"
	PathPaymentQR     = "/payments/:id/qr/"
	PathMe            = "/users/me/"
)

type Services struct {
	Catalog       *services.CatalogService
	Subscriptions *services.SubscriptionService
	Payments      *services.PaymentService
	Users         *services.UserService
}

type Handler struct {
	catalog       *services.CatalogService
	subscriptions *services.SubscriptionService
	payments      *services.PaymentService
	users         *services.UserService
	uploads       helpers.UploadConfig
}

func New(svc Services, uploads helpers.UploadConfig) *Handler {
	return &Handler{
		catalog:       svc.Catalog,
		subscriptions: svc.Subscriptions,
		payments:      svc.Payments,
		users:         svc.Users,
		uploads:       uploads,
	}
}

func badRequest(c *gin.Context, err error) {
	helpers.RespondWithAppError(c, validationError(err))
}
