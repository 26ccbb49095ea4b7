package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type Repos struct {
	Organization    repos.OrganizationRepo
	User            repos.UserRepo
	Cohort          repos.CohortRepo
	UserCohort      repos.UserCohortRepo
	CourseCohort    repos.CourseCohortRepo
	Course          repos.CourseRepo
	Milestone       repos.MilestoneRepo
	Task            repos.TaskRepo
	CourseMilestone repos.CourseMilestoneRepo
	CourseTask      repos.CourseTaskRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Organization:    repos.NewOrganizationRepo(db, log),
		User:            repos.NewUserRepo(db, log),
		Cohort:          repos.NewCohortRepo(db, log),
		UserCohort:      repos.NewUserCohortRepo(db, log),
		CourseCohort:    repos.NewCourseCohortRepo(db, log),
		Course:          repos.NewCourseRepo(db, log),
		Milestone:       repos.NewMilestoneRepo(db, log),
		Task:            repos.NewTaskRepo(db, log),
		CourseMilestone: repos.NewCourseMilestoneRepo(db, log),
		CourseTask:      repos.NewCourseTaskRepo(db, log),
	}
}
