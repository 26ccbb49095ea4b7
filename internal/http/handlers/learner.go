package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cohort-backend/internal/http/response"
	"github.com/yungbote/cohort-backend/internal/services"
)

type LearnerHandler struct {
	learner services.LearnerService
	now     func() time.Time
}

func NewLearnerHandler(learner services.LearnerService) *LearnerHandler {
	return &LearnerHandler{learner: learner, now: func() time.Time { return time.Now().UTC() }}
}

// GET /learner/cohorts/:cohortId/courses
func (h *LearnerHandler) ListCourses(c *gin.Context) {
	rd, ok := subjectOf(c)
	if !ok {
		return
	}
	cohortID, ok := uuidParam(c, "cohortId")
	if !ok {
		return
	}
	trees, err := h.learner.ListCourses(dbcOf(c), rd.UserID, cohortID, h.now())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": trees})
}

// GET /learner/cohorts/:cohortId/courses/:courseId
func (h *LearnerHandler) GetCourse(c *gin.Context) {
	rd, ok := subjectOf(c)
	if !ok {
		return
	}
	cohortID, ok := uuidParam(c, "cohortId")
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	tree, err := h.learner.GetCourse(dbcOf(c), rd.UserID, cohortID, courseID, h.now())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": tree})
}
