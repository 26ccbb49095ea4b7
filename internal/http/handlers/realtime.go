package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cohort-backend/internal/platform/logger"
	"github.com/yungbote/cohort-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /courses/:id/events
// Streams course.structure_changed and task.published for one course until the client disconnects.
func (h *RealtimeHandler) CourseEvents(c *gin.Context) {
	rd, ok := subjectOf(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	client := h.hub.NewSSEClient(rd.UserID)
	h.hub.AddChannel(client, realtime.CourseChannel(courseID))
	h.log.Info("SSE stream open", "user_id", rd.UserID, "course_id", courseID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "client_id", client.ID)
}
