package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"rideboard/config"
	"rideboard/internal/handler"
	"rideboard/internal/logger"
	"rideboard/internal/middleware"
	"rideboard/internal/notify"
	"rideboard/internal/observability"
	"rideboard/internal/repository"
	"rideboard/internal/service"
	"rideboard/internal/validation"
	"rideboard/pkg/database"
	"rideboard/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg)

	db := database.NewPostgresDB(cfg.DSN())

	// Notification dispatcher: AMQP when configured, no-op otherwise.
	var dispatcher notify.Dispatcher = notify.Noop{}
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		defer publisher.Close()
		dispatcher = notify.NewAMQPDispatcher(publisher)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	// Services
	userSvc := service.NewUserService(userRepo, vehicleRepo, offeringRepo, memberRepo, requestRepo, favoriteRepo)
	vehicleSvc := service.NewVehicleService(vehicleRepo, offeringRepo, userRepo)
	offeringSvc := service.NewOfferingService(offeringRepo, memberRepo, favoriteRepo, vehicleRepo, dispatcher)
	requestSvc := service.NewRequestService(requestRepo, favoriteRepo, dispatcher)
	favoriteSvc := service.NewFavoriteService(favoriteRepo, offeringRepo, requestRepo)

	// Background sweeps
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	maintenance := service.NewMaintenance(
		offeringRepo, requestRepo, memberRepo, favoriteRepo, dispatcher,
		cfg.MaintenanceInterval, cfg.ReminderLead, cfg.ListingRetention,
	)
	maintenance.Start(ctx)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.Recover())
	e.Use(observability.Middleware())
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logrus.WithFields(logrus.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
			}).Info("request")
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "rideboard"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", middleware.RequireAuth(cfg.JWTSecret, userSvc))
	handler.NewOfferingHandler(offeringSvc).RegisterRoutes(api)
	handler.NewRequestHandler(requestSvc).RegisterRoutes(api)
	handler.NewUserHandler(userSvc, favoriteSvc).RegisterRoutes(api)
	handler.NewVehicleHandler(vehicleSvc).RegisterRoutes(api)
	handler.NewListingHandler(offeringSvc, requestSvc).RegisterRoutes(api)

	go func() {
		logrus.Infof("rideboard starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown failed")
	}
}
