package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/http/response"
	"github.com/yungbote/cohort-backend/internal/services"
)

type CourseStructureHandler struct {
	structure services.CourseStructureService
}

func NewCourseStructureHandler(structure services.CourseStructureService) *CourseStructureHandler {
	return &CourseStructureHandler{structure: structure}
}

type moveRequest struct {
	MilestoneID *uuid.UUID `json:"milestone_id"`
	From        *int       `json:"from"`
	To          *int       `json:"to"`
}

func (r moveRequest) indices() (int, int, error) {
	if r.From == nil || r.To == nil {
		return 0, 0, errors.New("from and to are required")
	}
	return *r.From, *r.To, nil
}

// GET /courses/:id/tree
func (h *CourseStructureHandler) Tree(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	tree, err := h.structure.GetTree(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": tree})
}

// POST /courses/:id/milestones
// body: { "milestone_id": "...", "ordering": 2 }  ordering omitted appends
func (h *CourseStructureHandler) AddMilestone(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		MilestoneID uuid.UUID `json:"milestone_id" binding:"required"`
		Ordering    *int      `json:"ordering"`
	}
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.structure.AddMilestone(dbcOf(c), id, req.MilestoneID, req.Ordering)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course_milestone": row})
}

// DELETE /courses/:id/milestones/:milestoneId
func (h *CourseStructureHandler) RemoveMilestone(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := uuidParam(c, "milestoneId")
	if !ok {
		return
	}
	if err := h.structure.RemoveMilestone(dbcOf(c), id, milestoneID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /courses/:id/milestones/swap
func (h *CourseStructureHandler) SwapMilestones(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req idPair
	if !bindJSON(c, &req) {
		return
	}
	changes, err := h.structure.SwapMilestones(dbcOf(c), id, req.A, req.B)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"changes": changes})
}

// POST /courses/:id/milestones/move
// body: { "from": 0, "to": 3 }
func (h *CourseStructureHandler) MoveMilestone(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req moveRequest
	if !bindJSON(c, &req) {
		return
	}
	from, to, err := req.indices()
	if err != nil {
		response.RespondBadRequest(c, err)
		return
	}
	changes, err := h.structure.MoveMilestone(dbcOf(c), id, from, to)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"changes": changes})
}

// POST /courses/:id/tasks
// body: { "task_id": "...", "milestone_id": "...", "ordering": 0 }  milestone_id omitted = unassigned
func (h *CourseStructureHandler) AddTask(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		TaskID      uuid.UUID  `json:"task_id" binding:"required"`
		MilestoneID *uuid.UUID `json:"milestone_id"`
		Ordering    *int       `json:"ordering"`
	}
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.structure.AddTask(dbcOf(c), id, req.TaskID, req.MilestoneID, req.Ordering)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course_task": row})
}

// DELETE /courses/:id/tasks/:taskId
func (h *CourseStructureHandler) RemoveTask(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "taskId")
	if !ok {
		return
	}
	if err := h.structure.RemoveTask(dbcOf(c), id, taskID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /courses/:id/tasks/swap
func (h *CourseStructureHandler) SwapTasks(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req idPair
	if !bindJSON(c, &req) {
		return
	}
	changes, err := h.structure.SwapTasks(dbcOf(c), id, req.A, req.B)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"changes": changes})
}

// POST /courses/:id/tasks/move
// body: { "milestone_id": "...", "from": 1, "to": 0 }
func (h *CourseStructureHandler) MoveTask(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req moveRequest
	if !bindJSON(c, &req) {
		return
	}
	from, to, err := req.indices()
	if err != nil {
		response.RespondBadRequest(c, err)
		return
	}
	changes, err := h.structure.MoveTask(dbcOf(c), id, req.MilestoneID, from, to)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"changes": changes})
}

// GET /courses/:id/check
func (h *CourseStructureHandler) Check(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	report, err := h.structure.Check(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

// POST /courses/:id/renumber
func (h *CourseStructureHandler) Renumber(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	changes, err := h.structure.Renumber(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"changes": changes})
}
