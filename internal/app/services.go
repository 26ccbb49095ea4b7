package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/platform/logger"
	"github.com/yungbote/cohort-backend/internal/services"
)

type Services struct {
	Notifier  services.CourseNotifier
	Org       services.OrgService
	User      services.UserService
	Cohort    services.CohortService
	Course    services.CourseService
	Milestone services.MilestoneService
	Task      services.TaskService
	Structure services.CourseStructureService
	Learner   services.LearnerService
}

func wireServices(db *gorm.DB, log *logger.Logger, r Repos, emit services.SSEEmitter) Services {
	log.Info("Wiring services...")
	notify := services.NewCourseNotifier(emit)
	locks := services.NewCourseLocks()
	return Services{
		Notifier:  notify,
		Org:       services.NewOrgService(db, log, r.Organization),
		User:      services.NewUserService(db, log, r.User),
		Cohort:    services.NewCohortService(db, log, r.Organization, r.User, r.Cohort, r.UserCohort, r.Course, r.CourseCohort),
		Course:    services.NewCourseService(db, log, locks, notify, r.Organization, r.Course, r.CourseMilestone, r.CourseTask, r.CourseCohort),
		Milestone: services.NewMilestoneService(db, log, r.Organization, r.Milestone),
		Task:      services.NewTaskService(db, log, notify, r.Organization, r.Task, r.CourseTask),
		Structure: services.NewCourseStructureService(db, log, locks, notify, r.Course, r.Milestone, r.Task, r.CourseMilestone, r.CourseTask),
		Learner:   services.NewLearnerService(db, log, r.UserCohort, r.CourseCohort, r.Course, r.Milestone, r.Task, r.CourseMilestone, r.CourseTask),
	}
}

// BuildServices wires repos and services for callers outside the HTTP server,
// such as the admin CLI. emit may be nil.
func BuildServices(db *gorm.DB, log *logger.Logger, emit services.SSEEmitter) (Repos, Services) {
	r := wireRepos(db, log)
	return r, wireServices(db, log, r, emit)
}
