package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos/cohort"
	"github.com/yungbote/cohort-backend/internal/data/repos/learning"
	"github.com/yungbote/cohort-backend/internal/data/repos/org"
	"github.com/yungbote/cohort-backend/internal/data/repos/user"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type OrganizationRepo = org.OrganizationRepo
type UserRepo = user.UserRepo

type CohortRepo = cohort.CohortRepo
type UserCohortRepo = cohort.UserCohortRepo
type CourseCohortRepo = cohort.CourseCohortRepo

type CourseRepo = learning.CourseRepo
type MilestoneRepo = learning.MilestoneRepo
type TaskRepo = learning.TaskRepo
type CourseMilestoneRepo = learning.CourseMilestoneRepo
type CourseTaskRepo = learning.CourseTaskRepo

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return org.NewOrganizationRepo(db, baseLog)
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewCohortRepo(db *gorm.DB, baseLog *logger.Logger) CohortRepo {
	return cohort.NewCohortRepo(db, baseLog)
}

func NewUserCohortRepo(db *gorm.DB, baseLog *logger.Logger) UserCohortRepo {
	return cohort.NewUserCohortRepo(db, baseLog)
}

func NewCourseCohortRepo(db *gorm.DB, baseLog *logger.Logger) CourseCohortRepo {
	return cohort.NewCourseCohortRepo(db, baseLog)
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return learning.NewMilestoneRepo(db, baseLog)
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return learning.NewTaskRepo(db, baseLog)
}

func NewCourseMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) CourseMilestoneRepo {
	return learning.NewCourseMilestoneRepo(db, baseLog)
}

func NewCourseTaskRepo(db *gorm.DB, baseLog *logger.Logger) CourseTaskRepo {
	return learning.NewCourseTaskRepo(db, baseLog)
}
