package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/http/response"
	"github.com/yungbote/cohort-backend/internal/learning/drip"
	"github.com/yungbote/cohort-backend/internal/services"
)

type CohortHandler struct {
	cohorts services.CohortService
}

func NewCohortHandler(cohorts services.CohortService) *CohortHandler {
	return &CohortHandler{cohorts: cohorts}
}

// POST /orgs/:id/cohorts
func (h *CohortHandler) Create(c *gin.Context) {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	cohort, err := h.cohorts.Create(dbcOf(c), orgID, req.Name)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"cohort": cohort})
}

// GET /orgs/:id/cohorts
func (h *CohortHandler) ListByOrg(c *gin.Context) {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.cohorts.ListByOrg(dbcOf(c), orgID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cohorts": rows})
}

// GET /cohorts/:id
func (h *CohortHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	cohort, err := h.cohorts.Get(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cohort": cohort})
}

type membersRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required"`
	Role    string      `json:"role"`
}

// POST /cohorts/:id/members
// body: { "user_ids": [...], "role": "learner|mentor" }
func (h *CohortHandler) AddMembers(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req membersRequest
	if !bindJSON(c, &req) {
		return
	}
	rows, err := h.cohorts.AddMembers(dbcOf(c), id, req.UserIDs, req.Role)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"members": rows})
}

// DELETE /cohorts/:id/members
// body: { "user_ids": [...] }
func (h *CohortHandler) RemoveMembers(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req membersRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.cohorts.RemoveMembers(dbcOf(c), id, req.UserIDs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"removed": n})
}

// GET /cohorts/:id/members
func (h *CohortHandler) ListMembers(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.cohorts.ListMembers(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"members": rows})
}

// POST /cohorts/:id/courses
// body: { "course_ids": [...], "is_drip_enabled": true, "frequency_value": 1, "frequency_unit": "week", "publish_at": "..." }
func (h *CohortHandler) AddCourses(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		CourseIDs []uuid.UUID `json:"course_ids" binding:"required"`
		drip.Config
	}
	if !bindJSON(c, &req) {
		return
	}
	rows, err := h.cohorts.AddCourses(dbcOf(c), id, req.CourseIDs, req.Config)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"courses": rows})
}

// GET /cohorts/:id/courses
func (h *CohortHandler) ListCourses(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.cohorts.ListCourses(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": rows})
}

// PUT /cohorts/:id/courses/:courseId/drip
func (h *CohortHandler) UpdateCourseDrip(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	var cfg drip.Config
	if !bindJSON(c, &cfg) {
		return
	}
	row, err := h.cohorts.UpdateCourseDrip(dbcOf(c), id, courseID, cfg)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": row})
}

// DELETE /cohorts/:id/courses/:courseId
func (h *CohortHandler) RemoveCourse(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	if err := h.cohorts.RemoveCourse(dbcOf(c), id, courseID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
