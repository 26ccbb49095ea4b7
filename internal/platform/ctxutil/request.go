package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "admin"
	RoleLearner = "learner"
)

type requestDataKey struct{}

// RequestData is the authenticated subject attached by the auth middleware.
type RequestData struct {
	UserID uuid.UUID
	Role   string
}

func (rd *RequestData) IsAdmin() bool {
	return rd != nil && rd.Role == RoleAdmin
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

type traceKey struct{}

// Trace identifies one request across logs, response headers and spans.
type Trace struct {
	TraceID   string
	RequestID string
}

func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(Default(ctx), traceKey{}, t)
}

func TraceFrom(ctx context.Context) *Trace {
	if ctx == nil {
		return nil
	}
	if t, ok := ctx.Value(traceKey{}).(*Trace); ok {
		return t
	}
	return nil
}

// LogFields returns the trace ids and authenticated subject carried by ctx as
// logger key/value pairs. Empty values are left out.
func LogFields(ctx context.Context) []interface{} {
	var kv []interface{}
	if t := TraceFrom(ctx); t != nil {
		if t.TraceID != "" {
			kv = append(kv, "trace_id", t.TraceID)
		}
		if t.RequestID != "" {
			kv = append(kv, "request_id", t.RequestID)
		}
	}
	if rd := GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		kv = append(kv, "user_id", rd.UserID.String(), "role", rd.Role)
	}
	return kv
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
