package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cohort-backend/internal/platform/apierr"
)

const codeInternal = "internal_error"

// RespondErr writes err using its *apierr.Error classification. Messages of
// 5xx errors are not echoed to the client.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.FromErr(err, codeInternal)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, codeInternal, errors.New("unknown error"))
	}
	_ = c.Error(err)
	if ae.Status >= http.StatusInternalServerError {
		RespondError(c, ae.Status, ae.Code, errors.New("internal server error"))
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func RespondBadRequest(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, "invalid_request", err)
}
