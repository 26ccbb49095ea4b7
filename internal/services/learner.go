package services

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/learning/drip"
	"github.com/yungbote/cohort-backend/internal/platform/apierr"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

const learnerCourseFanout = 4

// LearnerService renders courses as a cohort member sees them: published
// tasks only, with each milestone's drip unlock time.
type LearnerService interface {
	GetCourse(dbc dbctx.Context, userID, cohortID, courseID uuid.UUID, now time.Time) (*CourseTree, error)
	ListCourses(dbc dbctx.Context, userID, cohortID uuid.UUID, now time.Time) ([]*CourseTree, error)
}

type learnerService struct {
	db               *gorm.DB
	log              *logger.Logger
	tree             *treeLoader
	userCohortRepo   repos.UserCohortRepo
	courseCohortRepo repos.CourseCohortRepo
}

func NewLearnerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userCohortRepo repos.UserCohortRepo,
	courseCohortRepo repos.CourseCohortRepo,
	courseRepo repos.CourseRepo,
	milestoneRepo repos.MilestoneRepo,
	taskRepo repos.TaskRepo,
	courseMilestoneRepo repos.CourseMilestoneRepo,
	courseTaskRepo repos.CourseTaskRepo,
) LearnerService {
	return &learnerService{
		db:               db,
		log:              baseLog.With("service", "LearnerService"),
		userCohortRepo:   userCohortRepo,
		courseCohortRepo: courseCohortRepo,
		tree: &treeLoader{
			courseRepo:          courseRepo,
			milestoneRepo:       milestoneRepo,
			taskRepo:            taskRepo,
			courseMilestoneRepo: courseMilestoneRepo,
			courseTaskRepo:      courseTaskRepo,
		},
	}
}

func (s *learnerService) membership(dbc dbctx.Context, userID, cohortID uuid.UUID) (*types.UserCohort, error) {
	m, err := s.userCohortRepo.GetMember(dbc, cohortID, userID)
	if err != nil {
		return nil, toAPIError("load membership", err)
	}
	if m == nil {
		return nil, apierr.New(http.StatusNotFound, "not_a_member", errs.NotFound("user %s is not in cohort %s", userID, cohortID))
	}
	return m, nil
}

func (s *learnerService) GetCourse(dbc dbctx.Context, userID, cohortID, courseID uuid.UUID, now time.Time) (*CourseTree, error) {
	member, err := s.membership(dbc, userID, cohortID)
	if err != nil {
		return nil, err
	}
	link, err := s.courseCohortRepo.Get(dbc, cohortID, courseID)
	if err != nil {
		return nil, toAPIError("load cohort course", err)
	}
	if link == nil {
		return nil, apierr.New(http.StatusNotFound, "course_not_found", errs.NotFound("course %s is not in cohort %s", courseID, cohortID))
	}
	return s.render(dbc, member, link, now)
}

// ListCourses renders every course of the cohort; courses load concurrently.
func (s *learnerService) ListCourses(dbc dbctx.Context, userID, cohortID uuid.UUID, now time.Time) ([]*CourseTree, error) {
	member, err := s.membership(dbc, userID, cohortID)
	if err != nil {
		return nil, err
	}
	links, err := s.courseCohortRepo.ListByCohort(dbc, cohortID)
	if err != nil {
		return nil, toAPIError("list cohort courses", err)
	}

	out := make([]*CourseTree, len(links))
	g, gctx := errgroup.WithContext(dbc.Ctx)
	if dbc.Tx != nil {
		// one transaction means one connection
		g.SetLimit(1)
	} else {
		g.SetLimit(learnerCourseFanout)
	}
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			tree, err := s.render(dbctx.Context{Ctx: gctx, Tx: dbc.Tx}, member, link, now)
			if err != nil {
				return err
			}
			out[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("learner course fan-out failed", "cohort_id", cohortID, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *learnerService) render(dbc dbctx.Context, member *types.UserCohort, link *types.CourseCohort, now time.Time) (*CourseTree, error) {
	tree, err := s.tree.load(dbc, link.CourseID, true)
	if err != nil {
		return nil, toAPIError("load course", err)
	}

	cfg := link.DripConfig()
	joinedAt := member.JoinedAt
	input := make([]drip.Milestone, 0, len(tree.Milestones))
	for _, m := range tree.Milestones {
		input = append(input, drip.Milestone{ID: m.MilestoneID, TaskCount: len(m.Tasks)})
	}
	unlocks, err := drip.ComputeUnlockDates(input, cfg, cfg.Anchor(&joinedAt), now.UTC())
	if err != nil {
		return nil, toAPIError("compute unlock dates", err)
	}
	for i, u := range unlocks {
		node := tree.Milestones[i]
		node.UnlockAt = u.UnlockAt
		if node.UnlockAt != nil {
			for _, t := range node.Tasks {
				t.Blocks = nil
			}
		}
	}
	tree.Drip = &cfg
	return tree, nil
}
