package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cohort-backend/internal/http/response"
	"github.com/yungbote/cohort-backend/internal/services"
)

type OrgHandler struct {
	orgs services.OrgService
}

func NewOrgHandler(orgs services.OrgService) *OrgHandler {
	return &OrgHandler{orgs: orgs}
}

// POST /orgs
// body: { "name": "...", "slug": "..." }
func (h *OrgHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if !bindJSON(c, &req) {
		return
	}
	org, err := h.orgs.Create(dbcOf(c), req.Name, req.Slug)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"org": org})
}

// GET /orgs/:id
func (h *OrgHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	org, err := h.orgs.Get(dbcOf(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"org": org})
}
