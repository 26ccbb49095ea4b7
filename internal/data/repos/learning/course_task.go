package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type CourseTaskRepo interface {
	Create(dbc dbctx.Context, rows []*types.CourseTask) ([]*types.CourseTask, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseTask, error)
	ListByScope(dbc dbctx.Context, courseID uuid.UUID, milestoneID *uuid.UUID) ([]*types.CourseTask, error)
	GetByTasks(dbc dbctx.Context, courseID uuid.UUID, taskIDs []uuid.UUID) ([]*types.CourseTask, error)
	GetByTask(dbc dbctx.Context, courseID, taskID uuid.UUID) (*types.CourseTask, error)
	ListByTaskIDs(dbc dbctx.Context, taskIDs []uuid.UUID) ([]*types.CourseTask, error)
	MaxOrdering(dbc dbctx.Context, courseID uuid.UUID, milestoneID *uuid.UUID) (int, error)
	ShiftFrom(dbc dbctx.Context, courseID uuid.UUID, milestoneID *uuid.UUID, at int) (int64, error)
	SetOrdering(dbc dbctx.Context, id uuid.UUID, ordering int) error
	SetScope(dbc dbctx.Context, id uuid.UUID, milestoneID *uuid.UUID, ordering int) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) error
	DeleteByTaskIDs(dbc dbctx.Context, taskIDs []uuid.UUID) ([]*types.CourseTask, error)
}

type courseTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseTaskRepo(db *gorm.DB, baseLog *logger.Logger) CourseTaskRepo {
	return &courseTaskRepo{db: db, log: baseLog.With("repo", "CourseTaskRepo")}
}

// inScope narrows q to one ordering scope; a nil milestone is the course's unassigned scope.
func inScope(q *gorm.DB, courseID uuid.UUID, milestoneID *uuid.UUID) *gorm.DB {
	q = q.Where("course_id = ?", courseID)
	if milestoneID == nil {
		return q.Where("milestone_id IS NULL")
	}
	return q.Where("milestone_id = ?", *milestoneID)
}

func (r *courseTaskRepo) Create(dbc dbctx.Context, rows []*types.CourseTask) ([]*types.CourseTask, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CourseTask{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseTaskRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseTask, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseTask
	if err := t.WithContext(dbc.Ctx).
		Where("course_id = ?", courseID).
		Order("ordering ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByScope returns one scope's rows in ordering order.
func (r *courseTaskRepo) ListByScope(dbc dbctx.Context, courseID uuid.UUID, milestoneID *uuid.UUID) ([]*types.CourseTask, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseTask
	if err := inScope(t.WithContext(dbc.Ctx), courseID, milestoneID).
		Order("ordering ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseTaskRepo) GetByTasks(dbc dbctx.Context, courseID uuid.UUID, taskIDs []uuid.UUID) ([]*types.CourseTask, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseTask
	if len(taskIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("course_id = ? AND task_id IN ?", courseID, taskIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseTaskRepo) GetByTask(dbc dbctx.Context, courseID, taskID uuid.UUID) (*types.CourseTask, error) {
	rows, err := r.GetByTasks(dbc, courseID, []uuid.UUID{taskID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *courseTaskRepo) ListByTaskIDs(dbc dbctx.Context, taskIDs []uuid.UUID) ([]*types.CourseTask, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseTask
	if len(taskIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("task_id IN ?", taskIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MaxOrdering returns the highest ordering in the scope, or -1 when it is empty.
func (r *courseTaskRepo) MaxOrdering(dbc dbctx.Context, courseID uuid.UUID, milestoneID *uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var max int
	q := t.WithContext(dbc.Ctx).Model(&types.CourseTask{})
	if err := inScope(q, courseID, milestoneID).
		Select("COALESCE(MAX(ordering), -1)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

// ShiftFrom increments every ordering >= at in the scope by one.
func (r *courseTaskRepo) ShiftFrom(dbc dbctx.Context, courseID uuid.UUID, milestoneID *uuid.UUID, at int) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.CourseTask{})
	res := inScope(q, courseID, milestoneID).
		Where("ordering >= ?", at).
		UpdateColumn("ordering", gorm.Expr("ordering + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *courseTaskRepo) SetOrdering(dbc dbctx.Context, id uuid.UUID, ordering int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CourseTask{}).
		Where("id = ?", id).
		UpdateColumn("ordering", ordering).Error
}

// SetScope moves a row to another milestone scope at the given ordering.
func (r *courseTaskRepo) SetScope(dbc dbctx.Context, id uuid.UUID, milestoneID *uuid.UUID, ordering int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CourseTask{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"milestone_id": milestoneID,
			"ordering":     ordering,
		}).Error
}

func (r *courseTaskRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.CourseTask{}).Error
}

func (r *courseTaskRepo) DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(courseIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("course_id IN ?", courseIDs).Delete(&types.CourseTask{}).Error
}

// DeleteByTaskIDs removes every placement of the tasks and returns the removed rows.
func (r *courseTaskRepo) DeleteByTaskIDs(dbc dbctx.Context, taskIDs []uuid.UUID) ([]*types.CourseTask, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	rows, err := r.ListByTaskIDs(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, taskIDs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("task_id IN ?", taskIDs).Delete(&types.CourseTask{}).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
