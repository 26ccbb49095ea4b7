package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/cohort-backend/internal/platform/logger"
	"github.com/yungbote/cohort-backend/internal/realtime"
)

// localBus delivers messages to forwarders in the same process. It is used
// when no redis address is configured.
type localBus struct {
	log *logger.Logger

	mu     sync.RWMutex
	subs   map[int]func(realtime.SSEMessage)
	nextID int
	closed bool
}

func NewLocalBus(log *logger.Logger) Bus {
	return &localBus{
		log:  log.With("service", "LocalBus"),
		subs: make(map[int]func(realtime.SSEMessage)),
	}
}

func (b *localBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("bus closed")
	}
	b.log.Debug("bus publish", "channel", msg.Channel, "event", msg.Event, "forwarders", len(b.subs))
	for _, fn := range b.subs {
		fn(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("bus closed")
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[int]func(realtime.SSEMessage))
	return nil
}
