package main

import (
	"context"
	"errors"
	"time"

	"github.com/pboennig/cs152-bot/discord"
)

// RunConsumer drives the gateway connection until the context ends,
// reconnecting with a fixed backoff when the connection drops.
// Misconfiguration (a bot account whose name carries no group number)
// cannot be fixed by reconnecting and aborts the daemon.
func (s *Server) RunConsumer(ctx context.Context) error {
	for {
		gatewayConnects.Inc()
		err := s.gateway.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, discord.ErrBotNameMismatch) {
			return err
		}
		gatewayDisconnects.Inc()
		s.logger.Error("gateway connection ended, reconnecting", "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}
