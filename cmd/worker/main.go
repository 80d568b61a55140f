package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dteedee/medix-scheduling/internal/config"
	"github.com/dteedee/medix-scheduling/internal/email"
	"github.com/dteedee/medix-scheduling/internal/repository/postgres"
	"github.com/dteedee/medix-scheduling/internal/service/notification"
	"github.com/dteedee/medix-scheduling/pkg/logger"
	"github.com/dteedee/medix-scheduling/pkg/messaging/redis"
	"github.com/dteedee/medix-scheduling/pkg/metrics"
	"github.com/dteedee/medix-scheduling/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	env, err := config.LoadWorkerEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load worker environment")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := &logger.Logger{ZL: log.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	reminderRepo := postgres.NewReminderRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	notifier := notification.NewService(broker, appLogger)

	var alerts email.Service = email.NopService{}
	if cfg.SMTP.Host != "" {
		alerts = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			AlertTo:  cfg.SMTP.AlertTo,
		})
	}

	processor := worker.NewReminderProcessor(
		reminderRepo,
		appointmentRepo,
		notifier,
		alerts,
		env.ToProcessorConfig(cfg.Reminder),
		appLogger,
		metrics.New("reminder_processor"),
	)

	setupHealthCheck(appLogger, env.HealthPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.ZL.Info().Msg("Shutting down...")
		cancel()
	}()

	processor.Start(ctx)
}

func setupHealthCheck(logger *logger.Logger, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			logger.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}
