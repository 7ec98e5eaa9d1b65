package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"taskflow-server/internal/config"
	"taskflow-server/internal/domain/notification"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/infrastructure/cache"
	"taskflow-server/internal/infrastructure/events"
	"taskflow-server/internal/infrastructure/logger"
	"taskflow-server/internal/infrastructure/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logg, err := logger.New("notification-service", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build logger")
	}

	nc, err := broker.Connect(cfg.NATSURL, "taskflow-notifications", logg)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to broker")
	}
	defer nc.Close()

	rdb, err := cache.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		logg.Warn().Msg("SMTP_HOST not set, mail is logged instead of sent")
		mail = &mailer.LogMailer{Logger: logg}
	}

	dispatcher := broker.NewDispatcher(nc, cfg.RPCTimeout, logg)
	svc := notification.NewService(dispatcher, mail, logg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriber := events.NewRedisSubscriber(rdb, logg)
	subscriber.Subscribe(ctx, events.TopicUserRegister, svc.HandleUserRegister)
	subscriber.Subscribe(ctx, events.TopicTaskAssigned, svc.HandleTaskAssigned)

	logg.Info().Msg("Notification service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info().Msg("Shutting down")
	cancel()
}
