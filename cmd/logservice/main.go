package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"taskflow-server/internal/config"
	"taskflow-server/internal/domain/logentry"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/infrastructure/logger"
	"taskflow-server/internal/infrastructure/repository/logrepo"
	"taskflow-server/internal/interfaces/rpcserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logg, err := logger.New("log-service", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build logger")
	}

	nc, err := broker.Connect(cfg.NATSURL, "taskflow-logs", logg)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to broker")
	}
	defer nc.Close()

	svc := logentry.NewService(logrepo.NewMemoryRepository(), logg)

	responder := broker.NewResponder(nc, "log-service", logg)
	rpcserver.BindLogCommands(responder, svc)
	if err := responder.Start(); err != nil {
		logg.Fatal().Err(err).Msg("Failed to start command handlers")
	}

	logg.Info().Msg("Log service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info().Msg("Shutting down")
	responder.Drain()
}
