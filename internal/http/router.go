package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/cohort-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cohort-backend/internal/http/middleware"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	TracingEnabled bool
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler          *httpH.HealthHandler
	OrgHandler             *httpH.OrgHandler
	UserHandler            *httpH.UserHandler
	CohortHandler          *httpH.CohortHandler
	CourseHandler          *httpH.CourseHandler
	CourseStructureHandler *httpH.CourseStructureHandler
	MilestoneHandler       *httpH.MilestoneHandler
	TaskHandler            *httpH.TaskHandler
	LearnerHandler         *httpH.LearnerHandler
	RealtimeHandler        *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Learner (any authenticated subject)
	if cfg.LearnerHandler != nil {
		api.GET("/learner/cohorts/:cohortId/courses", cfg.LearnerHandler.ListCourses)
		api.GET("/learner/cohorts/:cohortId/courses/:courseId", cfg.LearnerHandler.GetCourse)
	}

	admin := api.Group("")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}

	// Organizations
	if cfg.OrgHandler != nil {
		admin.POST("/orgs", cfg.OrgHandler.Create)
		admin.GET("/orgs/:id", cfg.OrgHandler.Get)
	}

	// Users
	if cfg.UserHandler != nil {
		admin.POST("/users", cfg.UserHandler.Create)
		admin.GET("/users/:id", cfg.UserHandler.Get)
	}

	// Cohorts
	if cfg.CohortHandler != nil {
		admin.POST("/orgs/:id/cohorts", cfg.CohortHandler.Create)
		admin.GET("/orgs/:id/cohorts", cfg.CohortHandler.ListByOrg)
		admin.GET("/cohorts/:id", cfg.CohortHandler.Get)
		admin.POST("/cohorts/:id/members", cfg.CohortHandler.AddMembers)
		admin.DELETE("/cohorts/:id/members", cfg.CohortHandler.RemoveMembers)
		admin.GET("/cohorts/:id/members", cfg.CohortHandler.ListMembers)
		admin.POST("/cohorts/:id/courses", cfg.CohortHandler.AddCourses)
		admin.GET("/cohorts/:id/courses", cfg.CohortHandler.ListCourses)
		admin.PUT("/cohorts/:id/courses/:courseId/drip", cfg.CohortHandler.UpdateCourseDrip)
		admin.DELETE("/cohorts/:id/courses/:courseId", cfg.CohortHandler.RemoveCourse)
	}

	// Courses
	if cfg.CourseHandler != nil {
		admin.POST("/orgs/:id/courses", cfg.CourseHandler.Create)
		admin.GET("/orgs/:id/courses", cfg.CourseHandler.ListByOrg)
		admin.GET("/courses/:id", cfg.CourseHandler.Get)
		admin.DELETE("/courses/:id", cfg.CourseHandler.Delete)
	}

	// Course structure
	if cfg.CourseStructureHandler != nil {
		h := cfg.CourseStructureHandler
		admin.GET("/courses/:id/tree", h.Tree)
		admin.GET("/courses/:id/check", h.Check)
		admin.POST("/courses/:id/renumber", h.Renumber)
		admin.POST("/courses/:id/milestones", h.AddMilestone)
		admin.DELETE("/courses/:id/milestones/:milestoneId", h.RemoveMilestone)
		admin.POST("/courses/:id/milestones/swap", h.SwapMilestones)
		admin.POST("/courses/:id/milestones/move", h.MoveMilestone)
		admin.POST("/courses/:id/tasks", h.AddTask)
		admin.DELETE("/courses/:id/tasks/:taskId", h.RemoveTask)
		admin.POST("/courses/:id/tasks/swap", h.SwapTasks)
		admin.POST("/courses/:id/tasks/move", h.MoveTask)
	}

	// Milestones
	if cfg.MilestoneHandler != nil {
		admin.POST("/orgs/:id/milestones", cfg.MilestoneHandler.Create)
		admin.GET("/milestones/:id", cfg.MilestoneHandler.Get)
	}

	// Tasks
	if cfg.TaskHandler != nil {
		admin.POST("/orgs/:id/tasks", cfg.TaskHandler.Create)
		admin.GET("/tasks/:id", cfg.TaskHandler.Get)
		admin.DELETE("/tasks/:id", cfg.TaskHandler.Delete)
		admin.POST("/tasks/:id/publish", cfg.TaskHandler.Publish)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		admin.GET("/courses/:id/events", cfg.RealtimeHandler.CourseEvents)
	}

	return r
}
