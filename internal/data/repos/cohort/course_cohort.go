package cohort

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type CourseCohortRepo interface {
	Create(dbc dbctx.Context, rows []*types.CourseCohort) ([]*types.CourseCohort, error)
	Get(dbc dbctx.Context, cohortID, courseID uuid.UUID) (*types.CourseCohort, error)
	ListByCohort(dbc dbctx.Context, cohortID uuid.UUID) ([]*types.CourseCohort, error)
	GetByCohortAndCourses(dbc dbctx.Context, cohortID uuid.UUID, courseIDs []uuid.UUID) ([]*types.CourseCohort, error)
	UpdateDrip(dbc dbctx.Context, row *types.CourseCohort) error
	Delete(dbc dbctx.Context, cohortID, courseID uuid.UUID) (int64, error)
	DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) error
}

type courseCohortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseCohortRepo(db *gorm.DB, baseLog *logger.Logger) CourseCohortRepo {
	return &courseCohortRepo{db: db, log: baseLog.With("repo", "CourseCohortRepo")}
}

func (r *courseCohortRepo) Create(dbc dbctx.Context, rows []*types.CourseCohort) ([]*types.CourseCohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CourseCohort{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseCohortRepo) Get(dbc dbctx.Context, cohortID, courseID uuid.UUID) (*types.CourseCohort, error) {
	rows, err := r.GetByCohortAndCourses(dbc, cohortID, []uuid.UUID{courseID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *courseCohortRepo) ListByCohort(dbc dbctx.Context, cohortID uuid.UUID) ([]*types.CourseCohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseCohort
	if err := t.WithContext(dbc.Ctx).
		Where("cohort_id = ?", cohortID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseCohortRepo) GetByCohortAndCourses(dbc dbctx.Context, cohortID uuid.UUID, courseIDs []uuid.UUID) ([]*types.CourseCohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseCohort
	if len(courseIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("cohort_id = ? AND course_id IN ?", cohortID, courseIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDrip writes the four drip columns of row, including zero values.
func (r *courseCohortRepo) UpdateDrip(dbc dbctx.Context, row *types.CourseCohort) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CourseCohort{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"is_drip_enabled": row.IsDripEnabled,
			"frequency_value": row.FrequencyValue,
			"frequency_unit":  row.FrequencyUnit,
			"publish_at":      row.PublishAt,
		}).Error
}

func (r *courseCohortRepo) Delete(dbc dbctx.Context, cohortID, courseID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("cohort_id = ? AND course_id = ?", cohortID, courseID).
		Delete(&types.CourseCohort{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *courseCohortRepo) DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(courseIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("course_id IN ?", courseIDs).
		Delete(&types.CourseCohort{}).Error
}
