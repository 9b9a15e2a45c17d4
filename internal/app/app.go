package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/okhomenko/plantkeeper/internal/config"
	"github.com/okhomenko/plantkeeper/internal/handler"
	"github.com/okhomenko/plantkeeper/internal/notify"
	"github.com/okhomenko/plantkeeper/internal/repository"
	"github.com/okhomenko/plantkeeper/internal/scheduler"
	"github.com/okhomenko/plantkeeper/internal/service"
	"github.com/okhomenko/plantkeeper/internal/utils"
	"github.com/okhomenko/plantkeeper/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra     Infrastructure
	config    *config.Config
	router    *gin.Engine
	server    *http.Server
	scheduler *scheduler.Scheduler
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)
	notifier := notify.NewExpoNotifier()

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		jwtManager,
		blacklistService,
		cfg.Security.BCryptCost,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	plantService := service.NewPlantService(
		repos.Plant,
		repos.CareEvent,
		infra.ObjectStore(),
		infra.Logger(),
	)

	notificationService := service.NewNotificationService(
		repos.User,
		notifier,
		infra.Logger(),
		cfg.Notifications.ChannelID,
		cfg.Notifications.StaleTokenAge.Duration,
	)

	reminderService := service.NewReminderService(
		repos.Plant,
		notifier,
		infra.Logger(),
		cfg.Notifications.ChannelID,
		cfg.Scheduler.DispatchDelay.Duration,
	)

	jobScheduler, err := scheduler.New(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		cfg.Scheduler,
		infra.Logger(),
		reminderService,
		notificationService,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	authHandler := handler.NewAuthHandler(authService)
	plantHandler := handler.NewPlantHandler(plantService, cfg.Upload.MaxImageSize)
	notificationHandler := handler.NewNotificationHandler(notificationService, reminderService, jobScheduler)

	router := gin.Default()
	router.Use(otelgin.Middleware("plantkeeper"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, plantHandler, notificationHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:     infra,
		config:    cfg,
		router:    router,
		server:    srv,
		scheduler: jobScheduler,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	plantHandler *handler.PlantHandler,
	notificationHandler *handler.NotificationHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.AuthEndpointKey),
				authHandler.Register,
			)
			auth.POST("/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.AuthEndpointKey),
				authHandler.Login,
			)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", handler.AuthMiddleware(authService), authHandler.Logout)
			auth.GET("/me", handler.AuthMiddleware(authService), authHandler.GetMe)
			auth.PUT("/profile", handler.AuthMiddleware(authService), authHandler.UpdateProfile)
			auth.PUT("/password", handler.AuthMiddleware(authService), authHandler.ChangePassword)
		}

		plants := api.Group("/plants", handler.AuthMiddleware(authService))
		{
			plants.POST("", plantHandler.Create)
			plants.GET("", plantHandler.List)
			plants.GET("/needs-water", plantHandler.NeedsWater)
			plants.GET("/stats", plantHandler.Stats)
			plants.GET("/:id", plantHandler.Get)
			plants.PUT("/:id", plantHandler.Update)
			plants.DELETE("/:id", plantHandler.Delete)
			plants.POST("/:id/water", plantHandler.Water)
			plants.GET("/:id/history", plantHandler.History)
		}

		notifications := api.Group("/notifications", handler.AuthMiddleware(authService))
		{
			notifications.POST("/register-token", notificationHandler.RegisterToken)
			notifications.DELETE("/token", notificationHandler.ClearToken)
			notifications.PUT("/preferences", notificationHandler.UpdatePreferences)
			notifications.GET("/settings", notificationHandler.Settings)
			notifications.POST("/test", notificationHandler.SendTest)
			notifications.POST("/trigger-watering-check", notificationHandler.TriggerWateringCheck)
			notifications.GET("/cron-status", notificationHandler.CronStatus)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	// The scheduler drains before the HTTP server and infra go down so
	// in-flight jobs still have their dependencies.
	a.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
