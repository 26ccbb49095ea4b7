package domain

import (
	"github.com/yungbote/cohort-backend/internal/domain/cohort"
	"github.com/yungbote/cohort-backend/internal/domain/learning"
	"github.com/yungbote/cohort-backend/internal/domain/org"
	"github.com/yungbote/cohort-backend/internal/domain/user"
)

type Organization = org.Organization
type User = user.User

type Cohort = cohort.Cohort
type UserCohort = cohort.UserCohort
type CourseCohort = cohort.CourseCohort

type Course = learning.Course
type Milestone = learning.Milestone
type CourseMilestone = learning.CourseMilestone
type Task = learning.Task
type CourseTask = learning.CourseTask

const (
	RoleLearner = cohort.RoleLearner
	RoleMentor  = cohort.RoleMentor

	TaskTypeLearningMaterial = learning.TaskTypeLearningMaterial
	TaskTypeQuiz             = learning.TaskTypeQuiz
	TaskStatusDraft          = learning.TaskStatusDraft
	TaskStatusPublished      = learning.TaskStatusPublished
)

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Organization{},
		&User{},
		&Cohort{},
		&UserCohort{},
		&Course{},
		&CourseCohort{},
		&Milestone{},
		&CourseMilestone{},
		&Task{},
		&CourseTask{},
	}
}
