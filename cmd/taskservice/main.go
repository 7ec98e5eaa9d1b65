package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"taskflow-server/internal/config"
	"taskflow-server/internal/domain/task"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/infrastructure/cache"
	"taskflow-server/internal/infrastructure/events"
	"taskflow-server/internal/infrastructure/logclient"
	"taskflow-server/internal/infrastructure/logger"
	"taskflow-server/internal/infrastructure/repository/taskrepo"
	"taskflow-server/internal/interfaces/rpcserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logg, err := logger.New("task-service", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build logger")
	}

	nc, err := broker.Connect(cfg.NATSURL, "taskflow-tasks", logg)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to broker")
	}
	defer nc.Close()

	rdb, err := cache.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()

	dispatcher := broker.NewDispatcher(nc, cfg.RPCTimeout, logg)
	audit := logclient.New(dispatcher, "task-service", logg)
	store := cache.NewStore(cache.NewRedisKV(rdb), logg)
	publisher := events.NewRedisPublisher(rdb, logg)

	svc := task.NewService(taskrepo.NewMemoryRepository(), store, publisher, audit, cfg.CacheTTL, logg)

	responder := broker.NewResponder(nc, "task-service", logg)
	rpcserver.BindTaskCommands(responder, svc)
	if err := responder.Start(); err != nil {
		logg.Fatal().Err(err).Msg("Failed to start command handlers")
	}

	logg.Info().Msg("Task service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info().Msg("Shutting down")
	responder.Drain()
}
