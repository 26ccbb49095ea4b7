package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Milestone struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Color     string         `gorm:"column:color" json:"color,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Milestone) TableName() string { return "milestone" }

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CourseMilestone places a milestone in a course. Ordering is kept distinct per
// course by CourseStructureService; the store only indexes it, it does not
// enforce uniqueness.
type CourseMilestone struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_course_milestone_scope" json:"course_id"`
	MilestoneID uuid.UUID      `gorm:"type:uuid;not null;index" json:"milestone_id"`
	Ordering    int            `gorm:"column:ordering;not null;index:idx_course_milestone_scope" json:"ordering"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseMilestone) TableName() string { return "course_milestone" }

func (cm *CourseMilestone) BeforeCreate(tx *gorm.DB) error {
	if cm.ID == uuid.Nil {
		cm.ID = uuid.New()
	}
	return nil
}
