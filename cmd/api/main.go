package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dteedee/medix-scheduling/internal/config"
	appointmentHandler "github.com/dteedee/medix-scheduling/internal/handler/appointment"
	healthHandler "github.com/dteedee/medix-scheduling/internal/handler/health"
	overrideHandler "github.com/dteedee/medix-scheduling/internal/handler/override"
	reminderHandler "github.com/dteedee/medix-scheduling/internal/handler/reminder"
	scheduleHandler "github.com/dteedee/medix-scheduling/internal/handler/schedule"
	"github.com/dteedee/medix-scheduling/internal/repository/postgres"
	"github.com/dteedee/medix-scheduling/internal/router"
	appointmentService "github.com/dteedee/medix-scheduling/internal/service/appointment"
	"github.com/dteedee/medix-scheduling/internal/service/guard"
	overrideService "github.com/dteedee/medix-scheduling/internal/service/override"
	reminderService "github.com/dteedee/medix-scheduling/internal/service/reminder"
	scheduleService "github.com/dteedee/medix-scheduling/internal/service/schedule"
	"github.com/dteedee/medix-scheduling/pkg/lock"
	"github.com/dteedee/medix-scheduling/pkg/logger"
	"github.com/dteedee/medix-scheduling/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migrateCancel()
	if err := postgres.Migrate(migrateCtx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	redisClient := goredis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	doctorLocker := lock.NewRedisDoctorLocker(redisClient, cfg.Redis.LockTTL())
	appMetrics := metrics.New("medix_scheduling")

	// Repositories
	slotRepo := postgres.NewWeeklySlotRepository(db)
	overrideRepo := postgres.NewOverrideRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)

	// Services
	bookingGuard := guard.NewGuard(appointmentRepo)
	scheduleSvc := scheduleService.NewService(slotRepo, bookingGuard, doctorLocker, appLogger)
	overrideSvc := overrideService.NewService(overrideRepo, slotRepo, bookingGuard, doctorLocker, appLogger)
	reminderSvc := reminderService.NewService(reminderService.NewQueueScheduler(reminderRepo), appMetrics, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo, reminderSvc, doctorLocker, appMetrics, appLogger)

	// Handlers
	healthH := healthHandler.NewHandler(db)
	scheduleH := scheduleHandler.NewHandler(scheduleSvc)
	overrideH := overrideHandler.NewHandler(overrideSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	reminderH := reminderHandler.NewHandler(reminderSvc)

	r := router.NewRouter(healthH, scheduleH, overrideH, appointmentH, reminderH, router.Config{
		RateLimit:      rate.Limit(cfg.Server.RateLimit),
		RateBurst:      cfg.Server.RateBurst,
		RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	appLogger.Info(fmt.Sprintf("listening on :%d", cfg.Server.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
