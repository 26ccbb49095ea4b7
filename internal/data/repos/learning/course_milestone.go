package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type CourseMilestoneRepo interface {
	Create(dbc dbctx.Context, rows []*types.CourseMilestone) ([]*types.CourseMilestone, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseMilestone, error)
	ListByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.CourseMilestone, error)
	GetByMilestones(dbc dbctx.Context, courseID uuid.UUID, milestoneIDs []uuid.UUID) ([]*types.CourseMilestone, error)
	GetByMilestone(dbc dbctx.Context, courseID, milestoneID uuid.UUID) (*types.CourseMilestone, error)
	MaxOrdering(dbc dbctx.Context, courseID uuid.UUID) (int, error)
	ShiftFrom(dbc dbctx.Context, courseID uuid.UUID, at int) (int64, error)
	SetOrdering(dbc dbctx.Context, id uuid.UUID, ordering int) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) error
}

type courseMilestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) CourseMilestoneRepo {
	return &courseMilestoneRepo{db: db, log: baseLog.With("repo", "CourseMilestoneRepo")}
}

func (r *courseMilestoneRepo) Create(dbc dbctx.Context, rows []*types.CourseMilestone) ([]*types.CourseMilestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CourseMilestone{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByCourse returns the course's milestone placements in course order.
func (r *courseMilestoneRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseMilestone, error) {
	return r.ListByCourseIDs(dbc, []uuid.UUID{courseID})
}

func (r *courseMilestoneRepo) ListByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.CourseMilestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseMilestone
	if len(courseIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("course_id IN ?", courseIDs).
		Order("course_id ASC, ordering ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseMilestoneRepo) GetByMilestones(dbc dbctx.Context, courseID uuid.UUID, milestoneIDs []uuid.UUID) ([]*types.CourseMilestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseMilestone
	if len(milestoneIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("course_id = ? AND milestone_id IN ?", courseID, milestoneIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseMilestoneRepo) GetByMilestone(dbc dbctx.Context, courseID, milestoneID uuid.UUID) (*types.CourseMilestone, error) {
	rows, err := r.GetByMilestones(dbc, courseID, []uuid.UUID{milestoneID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// MaxOrdering returns the highest ordering in the course, or -1 when it has no milestones.
func (r *courseMilestoneRepo) MaxOrdering(dbc dbctx.Context, courseID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var max int
	if err := t.WithContext(dbc.Ctx).
		Model(&types.CourseMilestone{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(ordering), -1)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

// ShiftFrom increments every ordering >= at in the course by one.
func (r *courseMilestoneRepo) ShiftFrom(dbc dbctx.Context, courseID uuid.UUID, at int) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.CourseMilestone{}).
		Where("course_id = ? AND ordering >= ?", courseID, at).
		UpdateColumn("ordering", gorm.Expr("ordering + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *courseMilestoneRepo) SetOrdering(dbc dbctx.Context, id uuid.UUID, ordering int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CourseMilestone{}).
		Where("id = ?", id).
		UpdateColumn("ordering", ordering).Error
}

func (r *courseMilestoneRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.CourseMilestone{}).Error
}

func (r *courseMilestoneRepo) DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(courseIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("course_id IN ?", courseIDs).Delete(&types.CourseMilestone{}).Error
}
