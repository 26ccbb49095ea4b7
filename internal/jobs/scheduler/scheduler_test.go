package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type fakePublisher struct {
	mu    sync.Mutex
	calls []time.Time
	n     int
	err   error
}

func (p *fakePublisher) PublishDue(dbc dbctx.Context, now time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, now)
	return p.n, p.err
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	if _, err := New(logger.Nop(), "every minute please", &fakePublisher{}); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
	if _, err := New(logger.Nop(), "", nil); err == nil {
		t.Fatalf("expected error for missing publisher")
	}
}

func TestNewDefaultsSpec(t *testing.T) {
	s, err := New(logger.Nop(), "  ", &fakePublisher{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("expected one registered job, got %d", got)
	}
}

func TestRunOnceUsesClock(t *testing.T) {
	pub := &fakePublisher{n: 3}
	s, err := New(logger.Nop(), "@every 1h", pub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	n, err := s.RunOnce(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("RunOnce: n=%d err=%v", n, err)
	}
	if len(pub.calls) != 1 || !pub.calls[0].Equal(at) {
		t.Fatalf("unexpected publisher calls %v", pub.calls)
	}

	pub.err = errors.New("db down")
	s.publishTick()
	if len(pub.calls) != 2 {
		t.Fatalf("tick should call the publisher even after a failure")
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(logger.Nop(), "@every 1h", &fakePublisher{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	s.Start(ctx)
	cancel()
	s.Stop()
	s.Stop()
}
