package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type TaskRepo interface {
	Create(dbc dbctx.Context, rows []*types.Task) ([]*types.Task, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Task, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	ListDueForPublish(dbc dbctx.Context, now time.Time, limit int) ([]*types.Task, error)
	MarkPublished(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) Create(dbc dbctx.Context, rows []*types.Task) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Task{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *taskRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Task
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListDueForPublish returns draft tasks whose scheduled_publish_at is at or before now.
func (r *taskRepo) ListDueForPublish(dbc dbctx.Context, now time.Time, limit int) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 500
	}
	var out []*types.Task
	if err := t.WithContext(dbc.Ctx).
		Where("status = ? AND scheduled_publish_at IS NOT NULL AND scheduled_publish_at <= ?", types.TaskStatusDraft, now.UTC()).
		Order("scheduled_publish_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) MarkPublished(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Task{}).
		Where("id IN ? AND status <> ?", ids, types.TaskStatusPublished).
		Updates(map[string]any{
			"status":     types.TaskStatusPublished,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *taskRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Task{}).Error
}
