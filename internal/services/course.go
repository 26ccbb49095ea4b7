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
	"github.com/yungbote/cohort-backend/internal/platform/keylock"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

// CourseLocks serialises structure mutations per course id within one process.
type CourseLocks = keylock.Map[uuid.UUID]

func NewCourseLocks() *CourseLocks { return keylock.New[uuid.UUID]() }

type CourseService interface {
	Create(dbc dbctx.Context, orgID uuid.UUID, name string) (*types.Course, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	ListByOrg(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Course, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type courseService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	locks               *CourseLocks
	notify              CourseNotifier
	orgRepo             repos.OrganizationRepo
	courseRepo          repos.CourseRepo
	courseMilestoneRepo repos.CourseMilestoneRepo
	courseTaskRepo      repos.CourseTaskRepo
	courseCohortRepo    repos.CourseCohortRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	locks *CourseLocks,
	notify CourseNotifier,
	orgRepo repos.OrganizationRepo,
	courseRepo repos.CourseRepo,
	courseMilestoneRepo repos.CourseMilestoneRepo,
	courseTaskRepo repos.CourseTaskRepo,
	courseCohortRepo repos.CourseCohortRepo,
) CourseService {
	if notify == nil {
		notify = NewCourseNotifier(nil)
	}
	return &courseService{
		db:                  db,
		log:                 baseLog.With("service", "CourseService"),
		locks:               locks,
		notify:              notify,
		orgRepo:             orgRepo,
		courseRepo:          courseRepo,
		courseMilestoneRepo: courseMilestoneRepo,
		courseTaskRepo:      courseTaskRepo,
		courseCohortRepo:    courseCohortRepo,
	}
}

func (s *courseService) Create(dbc dbctx.Context, orgID uuid.UUID, name string) (*types.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("name is required"))
	}
	var out *types.Course
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		org, err := s.orgRepo.GetByID(inner, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return errs.NotFound("organization %s", orgID)
		}
		c := &types.Course{OrgID: orgID, Name: name}
		if _, err := s.courseRepo.Create(inner, []*types.Course{c}); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, toAPIError("create course", err)
	}
	s.log.Info("course created", "course_id", out.ID, "org_id", orgID)
	return out, nil
}

func (s *courseService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	c, err := s.courseRepo.GetByID(dbc, id)
	if err != nil {
		return nil, toAPIError("get course", err)
	}
	if c == nil {
		return nil, apierr.New(http.StatusNotFound, "course_not_found", errs.NotFound("course %s", id))
	}
	return c, nil
}

func (s *courseService) ListByOrg(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Course, error) {
	org, err := s.orgRepo.GetByID(dbc, orgID)
	if err != nil {
		return nil, toAPIError("list courses", err)
	}
	if org == nil {
		return nil, apierr.New(http.StatusNotFound, "org_not_found", errs.NotFound("organization %s", orgID))
	}
	rows, err := s.courseRepo.ListByOrg(dbc, orgID)
	if err != nil {
		return nil, toAPIError("list courses", err)
	}
	return rows, nil
}

// Delete removes the course with its task and milestone placements and cohort links.
func (s *courseService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		c, err := s.courseRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if c == nil {
			return errs.NotFound("course %s", id)
		}
		ids := []uuid.UUID{id}
		if err := s.courseTaskRepo.DeleteByCourseIDs(inner, ids); err != nil {
			return err
		}
		if err := s.courseMilestoneRepo.DeleteByCourseIDs(inner, ids); err != nil {
			return err
		}
		if err := s.courseCohortRepo.DeleteByCourseIDs(inner, ids); err != nil {
			return err
		}
		return s.courseRepo.DeleteByIDs(inner, ids)
	})
	if err != nil {
		return toAPIError("delete course", err)
	}
	s.log.Info("course deleted", "course_id", id)
	s.notify.StructureChanged(dbc.Ctx, id, "course_deleted")
	return nil
}
