package services

import (
	"net/http"
	"regexp"
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

type OrgService interface {
	Create(dbc dbctx.Context, name, slug string) (*types.Organization, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Organization, error)
}

type orgService struct {
	db      *gorm.DB
	log     *logger.Logger
	orgRepo repos.OrganizationRepo
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugValid   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

func NewOrgService(db *gorm.DB, baseLog *logger.Logger, orgRepo repos.OrganizationRepo) OrgService {
	return &orgService{
		db:      db,
		log:     baseLog.With("service", "OrgService"),
		orgRepo: orgRepo,
	}
}

// Slugify lowercases s and collapses every run of other characters into one dash.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func (s *orgService) Create(dbc dbctx.Context, name, slug string) (*types.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("name is required"))
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		slug = Slugify(name)
	}
	if !slugValid.MatchString(slug) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("slug %q must be lowercase letters, digits and dashes", slug))
	}

	org := &types.Organization{Name: name, Slug: slug}
	if _, err := s.orgRepo.Create(dbc, []*types.Organization{org}); err != nil {
		s.log.Warn("create organization failed", "slug", slug, "error", err)
		return nil, toAPIError("create organization", err)
	}
	s.log.Info("organization created", "org_id", org.ID, "slug", slug)
	return org, nil
}

func (s *orgService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Organization, error) {
	org, err := s.orgRepo.GetByID(dbc, id)
	if err != nil {
		return nil, toAPIError("get organization", err)
	}
	if org == nil {
		return nil, apierr.New(http.StatusNotFound, "org_not_found", errs.NotFound("organization %s", id))
	}
	return org, nil
}
