package broker

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Connect opens the process-wide broker connection. One connection per
// process, passed to every component that needs it; callers own the Close.
func Connect(url, name string, logger zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("broker disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("broker reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect broker at %s: %w", url, err)
	}
	logger.Info().Str("url", url).Msg("broker connection established")
	return nc, nil
}
