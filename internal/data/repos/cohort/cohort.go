package cohort

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type CohortRepo interface {
	Create(dbc dbctx.Context, rows []*types.Cohort) ([]*types.Cohort, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Cohort, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Cohort, error)
	ListByOrg(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Cohort, error)
}

type cohortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCohortRepo(db *gorm.DB, baseLog *logger.Logger) CohortRepo {
	return &cohortRepo{db: db, log: baseLog.With("repo", "CohortRepo")}
}

func (r *cohortRepo) Create(dbc dbctx.Context, rows []*types.Cohort) ([]*types.Cohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Cohort{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *cohortRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Cohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Cohort
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cohortRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Cohort, error) {
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

func (r *cohortRepo) ListByOrg(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Cohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Cohort
	if err := t.WithContext(dbc.Ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
