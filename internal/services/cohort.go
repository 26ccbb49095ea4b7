package services

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/learning/drip"
	"github.com/yungbote/cohort-backend/internal/platform/apierr"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type CohortService interface {
	Create(dbc dbctx.Context, orgID uuid.UUID, name string) (*types.Cohort, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Cohort, error)
	ListByOrg(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Cohort, error)

	AddMembers(dbc dbctx.Context, cohortID uuid.UUID, userIDs []uuid.UUID, role string) ([]*types.UserCohort, error)
	RemoveMembers(dbc dbctx.Context, cohortID uuid.UUID, userIDs []uuid.UUID) (int64, error)
	ListMembers(dbc dbctx.Context, cohortID uuid.UUID) ([]*types.UserCohort, error)

	AddCourses(dbc dbctx.Context, cohortID uuid.UUID, courseIDs []uuid.UUID, cfg drip.Config) ([]*types.CourseCohort, error)
	UpdateCourseDrip(dbc dbctx.Context, cohortID, courseID uuid.UUID, cfg drip.Config) (*types.CourseCohort, error)
	RemoveCourse(dbc dbctx.Context, cohortID, courseID uuid.UUID) error
	ListCourses(dbc dbctx.Context, cohortID uuid.UUID) ([]*types.CourseCohort, error)
}

type cohortService struct {
	db               *gorm.DB
	log              *logger.Logger
	now              Clock
	orgRepo          repos.OrganizationRepo
	userRepo         repos.UserRepo
	cohortRepo       repos.CohortRepo
	userCohortRepo   repos.UserCohortRepo
	courseRepo       repos.CourseRepo
	courseCohortRepo repos.CourseCohortRepo
}

func NewCohortService(
	db *gorm.DB,
	baseLog *logger.Logger,
	orgRepo repos.OrganizationRepo,
	userRepo repos.UserRepo,
	cohortRepo repos.CohortRepo,
	userCohortRepo repos.UserCohortRepo,
	courseRepo repos.CourseRepo,
	courseCohortRepo repos.CourseCohortRepo,
) CohortService {
	return &cohortService{
		db:               db,
		log:              baseLog.With("service", "CohortService"),
		now:              systemClock,
		orgRepo:          orgRepo,
		userRepo:         userRepo,
		cohortRepo:       cohortRepo,
		userCohortRepo:   userCohortRepo,
		courseRepo:       courseRepo,
		courseCohortRepo: courseCohortRepo,
	}
}

func (s *cohortService) Create(dbc dbctx.Context, orgID uuid.UUID, name string) (*types.Cohort, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("name is required"))
	}
	var out *types.Cohort
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		org, err := s.orgRepo.GetByID(inner, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return errs.NotFound("organization %s", orgID)
		}
		c := &types.Cohort{OrgID: orgID, Name: name}
		if _, err := s.cohortRepo.Create(inner, []*types.Cohort{c}); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, toAPIError("create cohort", err)
	}
	s.log.Info("cohort created", "cohort_id", out.ID, "org_id", orgID)
	return out, nil
}

func (s *cohortService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Cohort, error) {
	c, err := s.cohortRepo.GetByID(dbc, id)
	if err != nil {
		return nil, toAPIError("get cohort", err)
	}
	if c == nil {
		return nil, apierr.New(http.StatusNotFound, "cohort_not_found", errs.NotFound("cohort %s", id))
	}
	return c, nil
}

func (s *cohortService) ListByOrg(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Cohort, error) {
	org, err := s.orgRepo.GetByID(dbc, orgID)
	if err != nil {
		return nil, toAPIError("list cohorts", err)
	}
	if org == nil {
		return nil, apierr.New(http.StatusNotFound, "org_not_found", errs.NotFound("organization %s", orgID))
	}
	rows, err := s.cohortRepo.ListByOrg(dbc, orgID)
	if err != nil {
		return nil, toAPIError("list cohorts", err)
	}
	return rows, nil
}

func (s *cohortService) requireCohort(dbc dbctx.Context, cohortID uuid.UUID) (*types.Cohort, error) {
	c, err := s.cohortRepo.GetByID(dbc, cohortID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.NotFound("cohort %s", cohortID)
	}
	return c, nil
}

// AddMembers enrolls users with joined_at = now. Re-adding an existing member is rejected.
func (s *cohortService) AddMembers(dbc dbctx.Context, cohortID uuid.UUID, userIDs []uuid.UUID, role string) ([]*types.UserCohort, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = types.RoleLearner
	}
	if role != types.RoleLearner && role != types.RoleMentor {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("unknown role %q", role))
	}
	ids := dedupeIDs(userIDs)
	if len(ids) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("user_ids is required"))
	}

	var out []*types.UserCohort
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.requireCohort(inner, cohortID); err != nil {
			return err
		}
		users, err := s.userRepo.GetByIDs(inner, ids)
		if err != nil {
			return err
		}
		if len(users) != len(ids) {
			found := make(map[uuid.UUID]bool, len(users))
			for _, u := range users {
				found[u.ID] = true
			}
			for _, id := range ids {
				if !found[id] {
					return errs.NotFound("user %s", id)
				}
			}
		}
		existing, err := s.userCohortRepo.GetByCohortAndUsers(inner, cohortID, ids)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errs.Invalid("user %s is already a member of cohort %s", existing[0].UserID, cohortID)
		}

		joinedAt := s.now().UTC()
		rows := make([]*types.UserCohort, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, &types.UserCohort{UserID: id, CohortID: cohortID, Role: role, JoinedAt: joinedAt})
		}
		if _, err := s.userCohortRepo.Create(inner, rows); err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, toAPIError("add cohort members", err)
	}
	s.log.Info("cohort members added", "cohort_id", cohortID, "count", len(out), "role", role)
	return out, nil
}

func (s *cohortService) RemoveMembers(dbc dbctx.Context, cohortID uuid.UUID, userIDs []uuid.UUID) (int64, error) {
	ids := dedupeIDs(userIDs)
	if len(ids) == 0 {
		return 0, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("user_ids is required"))
	}
	var removed int64
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.requireCohort(inner, cohortID); err != nil {
			return err
		}
		n, err := s.userCohortRepo.DeleteByCohortAndUsers(inner, cohortID, ids)
		removed = n
		return err
	})
	if err != nil {
		return 0, toAPIError("remove cohort members", err)
	}
	s.log.Info("cohort members removed", "cohort_id", cohortID, "count", removed)
	return removed, nil
}

func (s *cohortService) ListMembers(dbc dbctx.Context, cohortID uuid.UUID) ([]*types.UserCohort, error) {
	if _, err := s.requireCohort(dbc, cohortID); err != nil {
		return nil, toAPIError("list cohort members", err)
	}
	rows, err := s.userCohortRepo.ListByCohort(dbc, cohortID)
	if err != nil {
		return nil, toAPIError("list cohort members", err)
	}
	return rows, nil
}

// AddCourses attaches courses of the cohort's organization with one shared drip config.
func (s *cohortService) AddCourses(dbc dbctx.Context, cohortID uuid.UUID, courseIDs []uuid.UUID, cfg drip.Config) ([]*types.CourseCohort, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, toAPIError("add cohort courses", err)
	}
	ids := dedupeIDs(courseIDs)
	if len(ids) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("course_ids is required"))
	}

	var out []*types.CourseCohort
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		c, err := s.requireCohort(inner, cohortID)
		if err != nil {
			return err
		}
		courses, err := s.courseRepo.GetByIDs(inner, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*types.Course, len(courses))
		for _, course := range courses {
			byID[course.ID] = course
		}
		for _, id := range ids {
			course := byID[id]
			if course == nil {
				return errs.NotFound("course %s", id)
			}
			if course.OrgID != c.OrgID {
				return errs.Invalid("course %s belongs to another organization", id)
			}
		}
		existing, err := s.courseCohortRepo.GetByCohortAndCourses(inner, cohortID, ids)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errs.Invalid("course %s is already in cohort %s", existing[0].CourseID, cohortID)
		}

		rows := make([]*types.CourseCohort, 0, len(ids))
		for _, id := range ids {
			row := &types.CourseCohort{CourseID: id, CohortID: cohortID}
			row.SetDripConfig(cfg)
			rows = append(rows, row)
		}
		if _, err := s.courseCohortRepo.Create(inner, rows); err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, toAPIError("add cohort courses", err)
	}
	s.log.Info("cohort courses added", "cohort_id", cohortID, "count", len(out), "drip", cfg.Enabled)
	return out, nil
}

func (s *cohortService) UpdateCourseDrip(dbc dbctx.Context, cohortID, courseID uuid.UUID, cfg drip.Config) (*types.CourseCohort, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, toAPIError("update course drip", err)
	}
	var out *types.CourseCohort
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		row, err := s.courseCohortRepo.Get(inner, cohortID, courseID)
		if err != nil {
			return err
		}
		if row == nil {
			return errs.NotFound("course %s is not in cohort %s", courseID, cohortID)
		}
		row.SetDripConfig(cfg)
		if err := s.courseCohortRepo.UpdateDrip(inner, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, toAPIError("update course drip", err)
	}
	s.log.Info("course drip updated", "cohort_id", cohortID, "course_id", courseID, "drip", cfg.Enabled)
	return out, nil
}

func (s *cohortService) RemoveCourse(dbc dbctx.Context, cohortID, courseID uuid.UUID) error {
	n, err := s.courseCohortRepo.Delete(dbc, cohortID, courseID)
	if err != nil {
		return toAPIError("remove cohort course", err)
	}
	if n == 0 {
		return apierr.New(http.StatusNotFound, "not_found", errs.NotFound("course %s is not in cohort %s", courseID, cohortID))
	}
	s.log.Info("cohort course removed", "cohort_id", cohortID, "course_id", courseID)
	return nil
}

func (s *cohortService) ListCourses(dbc dbctx.Context, cohortID uuid.UUID) ([]*types.CourseCohort, error) {
	if _, err := s.requireCohort(dbc, cohortID); err != nil {
		return nil, toAPIError("list cohort courses", err)
	}
	rows, err := s.courseCohortRepo.ListByCohort(dbc, cohortID)
	if err != nil {
		return nil, toAPIError("list cohort courses", err)
	}
	return rows, nil
}
