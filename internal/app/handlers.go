package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/http"
	httpH "github.com/yungbote/cohort-backend/internal/http/handlers"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
	"github.com/yungbote/cohort-backend/internal/realtime"
)

type Handlers struct {
	Health          *httpH.HealthHandler
	Org             *httpH.OrgHandler
	User            *httpH.UserHandler
	Cohort          *httpH.CohortHandler
	Course          *httpH.CourseHandler
	CourseStructure *httpH.CourseStructureHandler
	Milestone       *httpH.MilestoneHandler
	Task            *httpH.TaskHandler
	Learner         *httpH.LearnerHandler
	Realtime        *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:          httpH.NewHealthHandler(db),
		Org:             httpH.NewOrgHandler(s.Org),
		User:            httpH.NewUserHandler(s.User),
		Cohort:          httpH.NewCohortHandler(s.Cohort),
		Course:          httpH.NewCourseHandler(s.Course),
		CourseStructure: httpH.NewCourseStructureHandler(s.Structure),
		Milestone:       httpH.NewMilestoneHandler(s.Milestone),
		Task:            httpH.NewTaskHandler(s.Task),
		Learner:         httpH.NewLearnerHandler(s.Learner),
		Realtime:        httpH.NewRealtimeHandler(log, hub),
	}
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                    log,
		ServiceName:            cfg.Otel.ServiceName,
		TracingEnabled:         cfg.Otel.Enabled,
		AllowedOrigins:         cfg.AllowedOrigins,
		AuthMiddleware:         mw.Auth,
		HealthHandler:          h.Health,
		OrgHandler:             h.Org,
		UserHandler:            h.User,
		CohortHandler:          h.Cohort,
		CourseHandler:          h.Course,
		CourseStructureHandler: h.CourseStructure,
		MilestoneHandler:       h.Milestone,
		TaskHandler:            h.Task,
		LearnerHandler:         h.Learner,
		RealtimeHandler:        h.Realtime,
	})
}
