package cohort

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type UserCohortRepo interface {
	Create(dbc dbctx.Context, rows []*types.UserCohort) ([]*types.UserCohort, error)
	ListByCohort(dbc dbctx.Context, cohortID uuid.UUID) ([]*types.UserCohort, error)
	GetByCohortAndUsers(dbc dbctx.Context, cohortID uuid.UUID, userIDs []uuid.UUID) ([]*types.UserCohort, error)
	GetMember(dbc dbctx.Context, cohortID, userID uuid.UUID) (*types.UserCohort, error)
	DeleteByCohortAndUsers(dbc dbctx.Context, cohortID uuid.UUID, userIDs []uuid.UUID) (int64, error)
}

type userCohortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserCohortRepo(db *gorm.DB, baseLog *logger.Logger) UserCohortRepo {
	return &userCohortRepo{db: db, log: baseLog.With("repo", "UserCohortRepo")}
}

func (r *userCohortRepo) Create(dbc dbctx.Context, rows []*types.UserCohort) ([]*types.UserCohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.UserCohort{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userCohortRepo) ListByCohort(dbc dbctx.Context, cohortID uuid.UUID) ([]*types.UserCohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserCohort
	if err := t.WithContext(dbc.Ctx).
		Where("cohort_id = ?", cohortID).
		Order("joined_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userCohortRepo) GetByCohortAndUsers(dbc dbctx.Context, cohortID uuid.UUID, userIDs []uuid.UUID) ([]*types.UserCohort, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserCohort
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("cohort_id = ? AND user_id IN ?", cohortID, userIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userCohortRepo) GetMember(dbc dbctx.Context, cohortID, userID uuid.UUID) (*types.UserCohort, error) {
	rows, err := r.GetByCohortAndUsers(dbc, cohortID, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userCohortRepo) DeleteByCohortAndUsers(dbc dbctx.Context, cohortID uuid.UUID, userIDs []uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(userIDs) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Where("cohort_id = ? AND user_id IN ?", cohortID, userIDs).
		Delete(&types.UserCohort{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
