package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cohort-backend/internal/platform/ctxutil"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

// Route params named after their resource.
var namedParamFields = map[string]string{
	"cohortId":    "cohort_id",
	"courseId":    "course_id",
	"milestoneId": "milestone_id",
	"taskId":      "task_id",
}

// A bare :id takes its name from the collection segment before it.
var idParamFields = map[string]string{
	"orgs":       "org_id",
	"users":      "target_user_id",
	"cohorts":    "cohort_id",
	"courses":    "course_id",
	"milestones": "milestone_id",
	"tasks":      "task_id",
}

// RequestLogger writes one line per request with its trace ids, the
// authenticated subject and the course/cohort/task ids addressed by the route.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		fields = append(fields, resourceFields(c)...)
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func resourceFields(c *gin.Context) []interface{} {
	var kv []interface{}
	segs := strings.Split(c.FullPath(), "/")
	for i, seg := range segs {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		field := namedParamFields[name]
		if name == "id" && i > 0 {
			field = idParamFields[segs[i-1]]
		}
		if field == "" {
			continue
		}
		if v := c.Param(name); v != "" {
			kv = append(kv, field, v)
		}
	}
	return kv
}
