package realtime

import (
	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventCourseStructureChanged SSEEvent = "course.structure_changed"
	SSEEventTaskPublished          SSEEvent = "task.published"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// CourseChannel is the channel carrying every event about one course.
func CourseChannel(courseID uuid.UUID) string {
	return "course:" + courseID.String()
}
