package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TaskTypeLearningMaterial = "learning_material"
	TaskTypeQuiz             = "quiz"

	TaskStatusDraft     = "draft"
	TaskStatusPublished = "published"
)

type Task struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID              uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	Type               string         `gorm:"column:type;not null" json:"type"`
	Title              string         `gorm:"column:title;not null" json:"title"`
	Blocks             datatypes.JSON `gorm:"column:blocks" json:"blocks"`
	Status             string         `gorm:"column:status;not null;default:'draft';index" json:"status"`
	ScheduledPublishAt *time.Time     `gorm:"column:scheduled_publish_at;index" json:"scheduled_publish_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Task) TableName() string { return "task" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// CourseTask places a task in a course, optionally inside a milestone.
// Ordering is kept distinct per (course_id, milestone_id) by
// CourseStructureService, not by a store constraint; a nil milestone is its own scope.
type CourseTask struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_course_task_scope" json:"course_id"`
	TaskID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"task_id"`
	MilestoneID *uuid.UUID     `gorm:"type:uuid;index:idx_course_task_scope" json:"milestone_id,omitempty"`
	Ordering    int            `gorm:"column:ordering;not null;index:idx_course_task_scope" json:"ordering"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseTask) TableName() string { return "course_task" }

func (ct *CourseTask) BeforeCreate(tx *gorm.DB) error {
	if ct.ID == uuid.Nil {
		ct.ID = uuid.New()
	}
	return nil
}
