package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type MilestoneRepo interface {
	Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Milestone, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error)
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return &milestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

func (r *milestoneRepo) Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Milestone{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *milestoneRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Milestone
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error) {
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
