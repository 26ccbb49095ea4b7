package ctxutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestLogFields(t *testing.T) {
	if kv := LogFields(nil); len(kv) != 0 {
		t.Fatalf("nil ctx: want no fields, got %v", kv)
	}

	uid := uuid.New()
	ctx := WithTrace(context.Background(), &Trace{TraceID: "t-1"})
	ctx = WithRequestData(ctx, &RequestData{UserID: uid, Role: RoleLearner})

	got := fmt.Sprint(LogFields(ctx))
	want := fmt.Sprint([]interface{}{"trace_id", "t-1", "user_id", uid.String(), "role", RoleLearner})
	if got != want {
		t.Fatalf("want %s got %s", want, got)
	}

	anon := WithTrace(context.Background(), &Trace{TraceID: "t-2", RequestID: "r-2"})
	if got := fmt.Sprint(LogFields(anon)); got != "[trace_id t-2 request_id r-2]" {
		t.Fatalf("anonymous request fields: %s", got)
	}
}

func TestTraceFromMissing(t *testing.T) {
	if TraceFrom(context.Background()) != nil {
		t.Fatalf("expected nil trace")
	}
	if !(&RequestData{Role: RoleAdmin}).IsAdmin() || (*RequestData)(nil).IsAdmin() {
		t.Fatalf("IsAdmin mismatch")
	}
}
