package bus

import (
	"context"

	"github.com/yungbote/cohort-backend/internal/realtime"
)

// Bus carries realtime messages between processes. Forwarders receive every
// message published after they start, including their own process's.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
