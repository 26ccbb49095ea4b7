package cohort

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/learning/drip"
)

// CourseCohort attaches a course to a cohort and carries the drip-release settings.
type CourseCohort struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_cohort_pair;index" json:"course_id"`
	CohortID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_cohort_pair;index" json:"cohort_id"`

	IsDripEnabled  bool       `gorm:"column:is_drip_enabled;not null;default:false" json:"is_drip_enabled"`
	FrequencyValue int        `gorm:"column:frequency_value;not null;default:0" json:"frequency_value"`
	FrequencyUnit  string     `gorm:"column:frequency_unit" json:"frequency_unit,omitempty"`
	PublishAt      *time.Time `gorm:"column:publish_at" json:"publish_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseCohort) TableName() string { return "course_cohort" }

func (cc *CourseCohort) BeforeCreate(tx *gorm.DB) error {
	if cc.ID == uuid.Nil {
		cc.ID = uuid.New()
	}
	return nil
}

func (cc *CourseCohort) DripConfig() drip.Config {
	if cc == nil {
		return drip.Config{}
	}
	return drip.Config{
		Enabled:        cc.IsDripEnabled,
		FrequencyValue: cc.FrequencyValue,
		FrequencyUnit:  drip.FrequencyUnit(cc.FrequencyUnit),
		PublishAt:      cc.PublishAt,
	}
}

func (cc *CourseCohort) SetDripConfig(cfg drip.Config) {
	cc.IsDripEnabled = cfg.Enabled
	cc.FrequencyValue = cfg.FrequencyValue
	cc.FrequencyUnit = string(cfg.FrequencyUnit)
	if cfg.PublishAt != nil {
		utc := cfg.PublishAt.UTC()
		cc.PublishAt = &utc
	} else {
		cc.PublishAt = nil
	}
}
