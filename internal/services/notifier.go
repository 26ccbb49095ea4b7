package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/realtime"
)

type CourseNotifier interface {
	StructureChanged(ctx context.Context, courseID uuid.UUID, op string)
	TaskPublished(ctx context.Context, courseID, taskID uuid.UUID)
}

type courseNotifier struct {
	emit SSEEmitter
}

func NewCourseNotifier(emit SSEEmitter) CourseNotifier {
	return &courseNotifier{emit: emit}
}

func (n *courseNotifier) StructureChanged(ctx context.Context, courseID uuid.UUID, op string) {
	if n == nil || n.emit == nil || courseID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.CourseChannel(courseID),
		Event:   realtime.SSEEventCourseStructureChanged,
		Data: map[string]any{
			"course_id": courseID,
			"op":        op,
		},
	})
}

func (n *courseNotifier) TaskPublished(ctx context.Context, courseID, taskID uuid.UUID) {
	if n == nil || n.emit == nil || courseID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.CourseChannel(courseID),
		Event:   realtime.SSEEventTaskPublished,
		Data: map[string]any{
			"course_id": courseID,
			"task_id":   taskID,
		},
	})
}
