package services

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/apierr"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type MilestoneService interface {
	Create(dbc dbctx.Context, orgID uuid.UUID, name, color string) (*types.Milestone, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error)
}

type milestoneService struct {
	db            *gorm.DB
	log           *logger.Logger
	orgRepo       repos.OrganizationRepo
	milestoneRepo repos.MilestoneRepo
}

func NewMilestoneService(db *gorm.DB, baseLog *logger.Logger, orgRepo repos.OrganizationRepo, milestoneRepo repos.MilestoneRepo) MilestoneService {
	return &milestoneService{
		db:            db,
		log:           baseLog.With("service", "MilestoneService"),
		orgRepo:       orgRepo,
		milestoneRepo: milestoneRepo,
	}
}

func (s *milestoneService) Create(dbc dbctx.Context, orgID uuid.UUID, name, color string) (*types.Milestone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("name is required"))
	}
	var out *types.Milestone
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		org, err := s.orgRepo.GetByID(inner, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return errs.NotFound("organization %s", orgID)
		}
		m := &types.Milestone{OrgID: orgID, Name: name, Color: strings.TrimSpace(color)}
		if _, err := s.milestoneRepo.Create(inner, []*types.Milestone{m}); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, toAPIError("create milestone", err)
	}
	return out, nil
}

func (s *milestoneService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error) {
	m, err := s.milestoneRepo.GetByID(dbc, id)
	if err != nil {
		return nil, toAPIError("get milestone", err)
	}
	if m == nil {
		return nil, apierr.New(http.StatusNotFound, "milestone_not_found", errs.NotFound("milestone %s", id))
	}
	return m, nil
}
