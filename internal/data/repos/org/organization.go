package org

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type OrganizationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Organization) ([]*types.Organization, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Organization, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Organization, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Organization, error)
}

type organizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return &organizationRepo{db: db, log: baseLog.With("repo", "OrganizationRepo")}
}

func (r *organizationRepo) Create(dbc dbctx.Context, rows []*types.Organization) ([]*types.Organization, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Organization{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *organizationRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Organization, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Organization
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *organizationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Organization, error) {
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

func (r *organizationRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Organization, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var out []*types.Organization
	if err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
