package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/farellandr/coursehub/config"
	"github.com/farellandr/coursehub/internal/auth"
	"github.com/farellandr/coursehub/internal/checkout"
	"github.com/farellandr/coursehub/internal/currency"
	"github.com/farellandr/coursehub/internal/handlers"
	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/mailer"
	"github.com/farellandr/coursehub/internal/middleware"
	"github.com/farellandr/coursehub/internal/repositories"
	"github.com/farellandr/coursehub/internal/services"
	"github.com/farellandr/coursehub/internal/workers"
)

const shutdownTimeout = 10 * time.Second

// app holds the long running pieces Start has to stop on shutdown.
type app struct {
	handler   *handlers.Handler
	tokens    *auth.TokenManager
	accounts  middleware.AccountLookup
	limiter   *middleware.RateLimiter
	notifier  *workers.Notifier
	scheduler *workers.Scheduler
}

func Start() error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := config.InitRedis(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if err := helpers.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	a, err := build(cfg, db, rdb)
	if err != nil {
		return err
	}

	a.notifier.Start(ctx)
	a.scheduler.Start()

	r := gin.New()
	setupRoutes(r, a, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	a.scheduler.Stop(shutdownCtx)
	a.notifier.Stop()
	return nil
}

func build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*app, error) {
	courses := repositories.NewCourseRepository(db)
	lessons := repositories.NewLessonRepository(db)
	users := repositories.NewUserRepository(db)
	subscriptions := repositories.NewSubscriptionRepository(db)
	payments := repositories.NewPaymentRepository(db)

	tokens := auth.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})
	notifications := services.NewNotificationService(courses, subscriptions, sender, cfg.SMTPFrom)
	notifier := workers.NewNotifier(notifications, cfg.NotifyWorkers, cfg.NotifyQueue)

	scheduler := workers.NewScheduler(services.NewMaintenanceService(users, cfg.InactivityThreshold))
	if err := scheduler.RegisterDeactivation(cfg.MaintenanceSchedule); err != nil {
		return nil, fmt.Errorf("invalid MAINTENANCE_SCHEDULE: %w", err)
	}

	converter := currency.NewConverter(
		currency.NewHTTPRateSource(cfg.CurrencyAPIURL, cfg.PaymentProviderTimeout),
		currency.Config{
			Local:      cfg.LocalCurrency,
			Settlement: cfg.SettlementCurrency,
			CacheTTL:   cfg.CurrencyCacheTTL,
		},
	)
	provider := checkout.NewStripeProvider(checkout.StripeConfig{
		SecretKey:  cfg.StripeSecretKey,
		SuccessURL: cfg.StripeSuccessURL,
		Timeout:    cfg.PaymentProviderTimeout,
	})

	h := handlers.New(handlers.Services{
		Catalog:       services.NewCatalogService(courses, lessons, notifier),
		Subscriptions: services.NewSubscriptionService(courses, subscriptions),
		Payments:      services.NewPaymentService(courses, lessons, payments, converter, provider),
		Users:         services.NewUserService(users, auth.NewPasswordHasher(0), tokens),
	}, helpers.ImageUploadConfig(cfg.UploadDir))

	return &app{
		handler:   h,
		tokens:    tokens,
		accounts:  users,
		limiter:   middleware.NewRateLimiter(rdb),
		notifier:  notifier,
		scheduler: scheduler,
	}, nil
}

func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.scheduler.Stop(ctx)
	a.notifier.Stop()
}

func setupRoutes(r *gin.Engine, a *app, cfg *config.Config) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}

	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logging(), cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := a.handler

	public := r.Group("")
	{
		public.POST(handlers.PathRegister, h.Register)
		public.POST(handlers.PathToken, a.limiter.Limit("login", cfg.LoginRateLimit, time.Minute), h.Login)
		public.POST(handlers.PathTokenRefresh, h.RefreshToken)
	}

	optional := r.Group("")
	optional.Use(middleware.Authenticate(a.tokens, a.accounts))
	{
		optional.GET(handlers.PathCourses, h.ListCourses)
		optional.GET(handlers.PathLessonList, h.ListLessons)
	}

	protected := r.Group("")
	protected.Use(middleware.Authenticate(a.tokens, a.accounts), middleware.RequireAuth())
	{
		protected.POST(handlers.PathCourses, h.CreateCourse)
		protected.GET(handlers.PathCourse, h.GetCourse)
		protected.PUT(handlers.PathCourse, h.UpdateCourse)
		protected.PATCH(handlers.PathCourse, h.UpdateCourse)
		protected.DELETE(handlers.PathCourse, h.DeleteCourse)

		protected.POST(handlers.PathLessonCreate, h.CreateLesson)
		protected.GET(handlers.PathLesson, h.GetLesson)
		protected.PUT(handlers.PathLessonUpdate, h.UpdateLesson)
		protected.PATCH(handlers.PathLessonUpdate, h.UpdateLesson)
		protected.DELETE(handlers.PathLessonDelete, h.DeleteLesson)

		protected.POST(handlers.PathSubscribe, h.ToggleSubscription)
		protected.GET(handlers.PathSubscriptions, h.ListSubscriptions)

		protected.POST(handlers.PathPayment, h.CreatePayment)
		protected.GET(handlers.PathPayments, h.ListPayments)
		protected.GET(handlers.PathPaymentQR, h.PaymentQR)

		protected.GET(handlers.PathMe, h.GetProfile)
		protected.PATCH(handlers.PathMe, h.UpdateProfile)
	}
}
