package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/http/response"
	"github.com/yungbote/cohort-backend/internal/platform/ctxutil"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
)

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// uuidParam parses a path parameter, writing a 400 when it is not a uuid.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		response.RespondBadRequest(c, fmt.Errorf("%s must be a uuid, got %q", name, raw))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondBadRequest(c, err)
		return false
	}
	return true
}

func subjectOf(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return nil, false
	}
	return rd, true
}

// idPair is the body of swap requests.
type idPair struct {
	A uuid.UUID `json:"a" binding:"required"`
	B uuid.UUID `json:"b" binding:"required"`
}
