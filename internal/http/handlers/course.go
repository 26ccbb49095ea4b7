package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cohort-backend/internal/http/response"
	"github.com/yungbote/cohort-backend/internal/services"
)

type CourseHandler struct {
	courses services.CourseService
}

func NewCourseHandler(courses services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// POST /orgs/:id/courses
func (h *CourseHandler) Create(c *gin.Context) {
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
	course, err := h.courses.Create(dbcOf(c), orgID, req.Name)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

// GET /orgs/:id/courses
func (h *CourseHandler) ListByOrg(c *gin.Context) {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.courses.ListByOrg(dbcOf(c), orgID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": rows})
}

// GET /courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	course, err := h.courses.Get(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// DELETE /courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.courses.Delete(dbcOf(c), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
