package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	"github.com/yungbote/cohort-backend/internal/data/repos/testutil"
	"github.com/yungbote/cohort-backend/internal/platform/apierr"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) count(event realtime.SSEEvent) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, m := range e.msgs {
		if m.Event == event {
			n++
		}
	}
	return n
}

type testEnv struct {
	ctx  context.Context
	dbc  dbctx.Context
	db   *gorm.DB
	emit *recordingEmitter

	orgs       OrgService
	users      UserService
	cohorts    CohortService
	courses    CourseService
	milestones MilestoneService
	tasks      TaskService
	structure  CourseStructureService
	learner    LearnerService
}

// newTestEnv wires every service against a private sqlite database. Service
// calls open their own transactions, so tests never hold one.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	orgRepo := repos.NewOrganizationRepo(db, log)
	userRepo := repos.NewUserRepo(db, log)
	cohortRepo := repos.NewCohortRepo(db, log)
	userCohortRepo := repos.NewUserCohortRepo(db, log)
	courseCohortRepo := repos.NewCourseCohortRepo(db, log)
	courseRepo := repos.NewCourseRepo(db, log)
	milestoneRepo := repos.NewMilestoneRepo(db, log)
	taskRepo := repos.NewTaskRepo(db, log)
	courseMilestoneRepo := repos.NewCourseMilestoneRepo(db, log)
	courseTaskRepo := repos.NewCourseTaskRepo(db, log)

	emit := &recordingEmitter{}
	notify := NewCourseNotifier(emit)
	locks := NewCourseLocks()

	ctx := context.Background()
	return &testEnv{
		ctx:        ctx,
		dbc:        dbctx.Context{Ctx: ctx},
		db:         db,
		emit:       emit,
		orgs:       NewOrgService(db, log, orgRepo),
		users:      NewUserService(db, log, userRepo),
		cohorts:    NewCohortService(db, log, orgRepo, userRepo, cohortRepo, userCohortRepo, courseRepo, courseCohortRepo),
		courses:    NewCourseService(db, log, locks, notify, orgRepo, courseRepo, courseMilestoneRepo, courseTaskRepo, courseCohortRepo),
		milestones: NewMilestoneService(db, log, orgRepo, milestoneRepo),
		tasks:      NewTaskService(db, log, notify, orgRepo, taskRepo, courseTaskRepo),
		structure:  NewCourseStructureService(db, log, locks, notify, courseRepo, milestoneRepo, taskRepo, courseMilestoneRepo, courseTaskRepo),
		learner:    NewLearnerService(db, log, userCohortRepo, courseCohortRepo, courseRepo, milestoneRepo, taskRepo, courseMilestoneRepo, courseTaskRepo),
	}
}

func statusOf(err error) int {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected status %d, got nil error", status)
	}
	if got := statusOf(err); got != status {
		t.Fatalf("expected status %d, got %d (%v)", status, got, err)
	}
}

func intPtr(v int) *int { return &v }

func fixedClock(at time.Time) Clock { return func() time.Time { return at } }
