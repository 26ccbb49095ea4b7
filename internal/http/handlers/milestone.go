package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cohort-backend/internal/http/response"
	"github.com/yungbote/cohort-backend/internal/services"
)

type MilestoneHandler struct {
	milestones services.MilestoneService
}

func NewMilestoneHandler(milestones services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestones: milestones}
}

// POST /orgs/:id/milestones
// body: { "name": "...", "color": "#ff8800" }
func (h *MilestoneHandler) Create(c *gin.Context) {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.milestones.Create(dbcOf(c), orgID, req.Name, req.Color)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"milestone": m})
}

// GET /milestones/:id
func (h *MilestoneHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	m, err := h.milestones.Get(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"milestone": m})
}
