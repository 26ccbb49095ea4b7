package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/cohort-backend/internal/platform/logger"
	"github.com/yungbote/cohort-backend/internal/realtime"
	"github.com/yungbote/cohort-backend/internal/realtime/bus"
)

type Clients struct {
	Bus bus.Bus
}

// wireClients picks the redis bus when REDIS_ADDR is configured and the
// in-process bus otherwise.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set; realtime events stay in this process")
		return Clients{Bus: bus.NewLocalBus(log)}, nil
	}
	b, err := bus.NewRedisBus(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis bus: %w", err)
	}
	return Clients{Bus: b}, nil
}

// startForwarder relays every bus message into the local SSE hub.
func startForwarder(ctx context.Context, b bus.Bus, hub *realtime.SSEHub) error {
	return b.StartForwarder(ctx, func(m realtime.SSEMessage) {
		hub.Broadcast(m)
	})
}

func (c Clients) Close() error {
	if c.Bus == nil {
		return nil
	}
	return c.Bus.Close()
}
