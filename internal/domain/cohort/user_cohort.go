package cohort

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleLearner = "learner"
	RoleMentor  = "mentor"
)

// UserCohort is a cohort membership. JoinedAt anchors drip schedules that have no publish_at.
type UserCohort struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_cohort_member" json:"user_id"`
	CohortID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_cohort_member;index" json:"cohort_id"`
	Role      string    `gorm:"column:role;not null;default:'learner'" json:"role"`
	JoinedAt  time.Time `gorm:"column:joined_at;not null" json:"joined_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserCohort) TableName() string { return "user_cohort" }

func (uc *UserCohort) BeforeCreate(tx *gorm.DB) error {
	if uc.ID == uuid.Nil {
		uc.ID = uuid.New()
	}
	return nil
}
