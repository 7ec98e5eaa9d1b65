package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"taskflow-server/internal/config"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/infrastructure/logger"
	"taskflow-server/internal/interfaces/httpserver"
	"taskflow-server/internal/interfaces/httpserver/handlers"
	"taskflow-server/internal/interfaces/httpserver/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logg, err := logger.New("gateway", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build logger")
	}

	nc, err := broker.Connect(cfg.NATSURL, "taskflow-gateway", logg)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to broker")
	}
	defer nc.Close()

	dispatcher := broker.NewDispatcher(nc, cfg.RPCTimeout, logg)

	router := routes.NewRouter(dispatcher,
		handlers.NewAuthHandler(dispatcher, logg),
		handlers.NewUsersHandler(dispatcher, logg),
		handlers.NewTasksHandler(dispatcher, logg),
	)

	server := httpserver.NewHTTPServer(router, cfg, logg)

	logg.Info().Int("port", cfg.HTTPPort).Msg("Gateway listening")
	if err := server.Run(); err != nil {
		logg.Error().Err(err).Msg("Gateway stopped")
		os.Exit(1)
	}
}
