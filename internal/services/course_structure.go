package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/learning/ordering"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

const (
	ScopeMilestones = "milestones"
	ScopeTasks      = "tasks"
)

// ScopeReport lists the ordering violations of one sibling scope. MilestoneID is
// nil for the course's milestone scope and for its unassigned task scope.
type ScopeReport struct {
	Kind        string               `json:"kind"`
	MilestoneID *uuid.UUID           `json:"milestone_id,omitempty"`
	Size        int                  `json:"size"`
	Violations  []ordering.Violation `json:"violations"`
}

type CheckReport struct {
	CourseID uuid.UUID     `json:"course_id"`
	OK       bool          `json:"ok"`
	Scopes   []ScopeReport `json:"scopes"`
}

// CourseStructureService maintains the ordering of a course's milestones and
// of the tasks inside each milestone. Every mutation of a course runs in one
// transaction while holding that course's lock.
type CourseStructureService interface {
	AddMilestone(dbc dbctx.Context, courseID, milestoneID uuid.UUID, at *int) (*types.CourseMilestone, error)
	RemoveMilestone(dbc dbctx.Context, courseID, milestoneID uuid.UUID) error
	SwapMilestones(dbc dbctx.Context, courseID, a, b uuid.UUID) ([]ordering.Change, error)
	MoveMilestone(dbc dbctx.Context, courseID uuid.UUID, from, to int) ([]ordering.Change, error)

	AddTask(dbc dbctx.Context, courseID, taskID uuid.UUID, milestoneID *uuid.UUID, at *int) (*types.CourseTask, error)
	RemoveTask(dbc dbctx.Context, courseID, taskID uuid.UUID) error
	SwapTasks(dbc dbctx.Context, courseID, a, b uuid.UUID) ([]ordering.Change, error)
	MoveTask(dbc dbctx.Context, courseID uuid.UUID, milestoneID *uuid.UUID, from, to int) ([]ordering.Change, error)

	GetTree(dbc dbctx.Context, courseID uuid.UUID) (*CourseTree, error)
	Check(dbc dbctx.Context, courseID uuid.UUID) (*CheckReport, error)
	Renumber(dbc dbctx.Context, courseID uuid.UUID) ([]ordering.Change, error)
}

type courseStructureService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	locks               *CourseLocks
	notify              CourseNotifier
	tree                *treeLoader
	courseRepo          repos.CourseRepo
	milestoneRepo       repos.MilestoneRepo
	taskRepo            repos.TaskRepo
	courseMilestoneRepo repos.CourseMilestoneRepo
	courseTaskRepo      repos.CourseTaskRepo
}

func NewCourseStructureService(
	db *gorm.DB,
	baseLog *logger.Logger,
	locks *CourseLocks,
	notify CourseNotifier,
	courseRepo repos.CourseRepo,
	milestoneRepo repos.MilestoneRepo,
	taskRepo repos.TaskRepo,
	courseMilestoneRepo repos.CourseMilestoneRepo,
	courseTaskRepo repos.CourseTaskRepo,
) CourseStructureService {
	if locks == nil {
		locks = NewCourseLocks()
	}
	if notify == nil {
		notify = NewCourseNotifier(nil)
	}
	return &courseStructureService{
		db:                  db,
		log:                 baseLog.With("service", "CourseStructureService"),
		locks:               locks,
		notify:              notify,
		courseRepo:          courseRepo,
		milestoneRepo:       milestoneRepo,
		taskRepo:            taskRepo,
		courseMilestoneRepo: courseMilestoneRepo,
		courseTaskRepo:      courseTaskRepo,
		tree: &treeLoader{
			courseRepo:          courseRepo,
			milestoneRepo:       milestoneRepo,
			taskRepo:            taskRepo,
			courseMilestoneRepo: courseMilestoneRepo,
			courseTaskRepo:      courseTaskRepo,
		},
	}
}

// mutate runs fn under the course lock inside one transaction and announces
// the change once it has committed.
func (s *courseStructureService) mutate(dbc dbctx.Context, courseID uuid.UUID, op string, fn func(inner dbctx.Context, course *types.Course) error) error {
	unlock := s.locks.Lock(courseID)
	defer unlock()

	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		course, err := s.courseRepo.GetByID(inner, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return errs.NotFound("course %s", courseID)
		}
		return fn(inner, course)
	})
	if err != nil {
		s.log.Debug("course structure change rejected", "course_id", courseID, "op", op, "error", err)
		return toAPIError(op, err)
	}
	s.log.Info("course structure changed", "course_id", courseID, "op", op)
	s.notify.StructureChanged(dbc.Ctx, courseID, op)
	return nil
}

// placement resolves the ordering for a new sibling: appended when at is nil,
// otherwise inserted at *at after shifting every sibling >= *at up by one.
func placement(at *int, maxOrdering func() (int, error), shift func(int) (int64, error)) (int, error) {
	if at == nil {
		max, err := maxOrdering()
		if err != nil {
			return 0, err
		}
		return max + 1, nil
	}
	if *at < 0 {
		return 0, errs.Invalid("ordering must be >= 0, got %d", *at)
	}
	if _, err := shift(*at); err != nil {
		return 0, err
	}
	return *at, nil
}

func milestoneItems(rows []*types.CourseMilestone) []ordering.Item {
	items := make([]ordering.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, ordering.Item{ID: r.ID, Ordering: r.Ordering})
	}
	return items
}

func taskItems(rows []*types.CourseTask) []ordering.Item {
	items := make([]ordering.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, ordering.Item{ID: r.ID, Ordering: r.Ordering})
	}
	return items
}

func (s *courseStructureService) applyMilestoneChanges(dbc dbctx.Context, changes []ordering.Change) error {
	for _, c := range changes {
		if err := s.courseMilestoneRepo.SetOrdering(dbc, c.ID, c.To); err != nil {
			return err
		}
	}
	return nil
}

func (s *courseStructureService) applyTaskChanges(dbc dbctx.Context, changes []ordering.Change) error {
	for _, c := range changes {
		if err := s.courseTaskRepo.SetOrdering(dbc, c.ID, c.To); err != nil {
			return err
		}
	}
	return nil
}

func (s *courseStructureService) AddMilestone(dbc dbctx.Context, courseID, milestoneID uuid.UUID, at *int) (*types.CourseMilestone, error) {
	var out *types.CourseMilestone
	err := s.mutate(dbc, courseID, "add_milestone", func(inner dbctx.Context, course *types.Course) error {
		m, err := s.milestoneRepo.GetByID(inner, milestoneID)
		if err != nil {
			return err
		}
		if m == nil {
			return errs.NotFound("milestone %s", milestoneID)
		}
		if m.OrgID != course.OrgID {
			return errs.Invalid("milestone %s belongs to another organization", milestoneID)
		}
		existing, err := s.courseMilestoneRepo.GetByMilestone(inner, courseID, milestoneID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errs.Invalid("milestone %s is already in course %s", milestoneID, courseID)
		}
		pos, err := placement(at,
			func() (int, error) { return s.courseMilestoneRepo.MaxOrdering(inner, courseID) },
			func(from int) (int64, error) { return s.courseMilestoneRepo.ShiftFrom(inner, courseID, from) },
		)
		if err != nil {
			return err
		}
		row := &types.CourseMilestone{CourseID: courseID, MilestoneID: milestoneID, Ordering: pos}
		if _, err := s.courseMilestoneRepo.Create(inner, []*types.CourseMilestone{row}); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveMilestone drops the milestone from the course. Its tasks stay in the
// course and are appended, in their current order, to the unassigned scope.
func (s *courseStructureService) RemoveMilestone(dbc dbctx.Context, courseID, milestoneID uuid.UUID) error {
	return s.mutate(dbc, courseID, "remove_milestone", func(inner dbctx.Context, _ *types.Course) error {
		cm, err := s.courseMilestoneRepo.GetByMilestone(inner, courseID, milestoneID)
		if err != nil {
			return err
		}
		if cm == nil {
			return errs.NotFound("milestone %s is not in course %s", milestoneID, courseID)
		}
		tasks, err := s.courseTaskRepo.ListByScope(inner, courseID, &milestoneID)
		if err != nil {
			return err
		}
		if len(tasks) > 0 {
			max, err := s.courseTaskRepo.MaxOrdering(inner, courseID, nil)
			if err != nil {
				return err
			}
			for i, ct := range tasks {
				if err := s.courseTaskRepo.SetScope(inner, ct.ID, nil, max+1+i); err != nil {
					return err
				}
			}
		}
		return s.courseMilestoneRepo.DeleteByIDs(inner, []uuid.UUID{cm.ID})
	})
}

// SwapMilestones exchanges the orderings of two milestones of the course.
func (s *courseStructureService) SwapMilestones(dbc dbctx.Context, courseID, a, b uuid.UUID) ([]ordering.Change, error) {
	var changes []ordering.Change
	err := s.mutate(dbc, courseID, "swap_milestones", func(inner dbctx.Context, _ *types.Course) error {
		if a == b {
			return ordering.ErrNoChanges
		}
		rows, err := s.courseMilestoneRepo.GetByMilestones(inner, courseID, []uuid.UUID{a, b})
		if err != nil {
			return err
		}
		byMilestone := make(map[uuid.UUID]*types.CourseMilestone, len(rows))
		for _, r := range rows {
			byMilestone[r.MilestoneID] = r
		}
		for _, id := range []uuid.UUID{a, b} {
			if byMilestone[id] == nil {
				return errs.NotFound("milestone %s is not in course %s", id, courseID)
			}
		}
		ra, rb := byMilestone[a], byMilestone[b]
		changes, err = ordering.Swap(
			ordering.Item{ID: ra.ID, Ordering: ra.Ordering},
			ordering.Item{ID: rb.ID, Ordering: rb.Ordering},
		)
		if err != nil {
			return err
		}
		return s.applyMilestoneChanges(inner, changes)
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// MoveMilestone moves the milestone at index from (in course order) to index to.
func (s *courseStructureService) MoveMilestone(dbc dbctx.Context, courseID uuid.UUID, from, to int) ([]ordering.Change, error) {
	var changes []ordering.Change
	err := s.mutate(dbc, courseID, "move_milestone", func(inner dbctx.Context, _ *types.Course) error {
		rows, err := s.courseMilestoneRepo.ListByCourse(inner, courseID)
		if err != nil {
			return err
		}
		changes, err = ordering.Move(milestoneItems(rows), from, to)
		if err != nil {
			return err
		}
		return s.applyMilestoneChanges(inner, changes)
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *courseStructureService) AddTask(dbc dbctx.Context, courseID, taskID uuid.UUID, milestoneID *uuid.UUID, at *int) (*types.CourseTask, error) {
	if milestoneID != nil && *milestoneID == uuid.Nil {
		milestoneID = nil
	}
	var out *types.CourseTask
	err := s.mutate(dbc, courseID, "add_task", func(inner dbctx.Context, course *types.Course) error {
		t, err := s.taskRepo.GetByID(inner, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return errs.NotFound("task %s", taskID)
		}
		if t.OrgID != course.OrgID {
			return errs.Invalid("task %s belongs to another organization", taskID)
		}
		if milestoneID != nil {
			cm, err := s.courseMilestoneRepo.GetByMilestone(inner, courseID, *milestoneID)
			if err != nil {
				return err
			}
			if cm == nil {
				return errs.NotFound("milestone %s is not in course %s", *milestoneID, courseID)
			}
		}
		existing, err := s.courseTaskRepo.GetByTask(inner, courseID, taskID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errs.Invalid("task %s is already in course %s", taskID, courseID)
		}
		pos, err := placement(at,
			func() (int, error) { return s.courseTaskRepo.MaxOrdering(inner, courseID, milestoneID) },
			func(from int) (int64, error) { return s.courseTaskRepo.ShiftFrom(inner, courseID, milestoneID, from) },
		)
		if err != nil {
			return err
		}
		row := &types.CourseTask{CourseID: courseID, TaskID: taskID, MilestoneID: milestoneID, Ordering: pos}
		if _, err := s.courseTaskRepo.Create(inner, []*types.CourseTask{row}); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *courseStructureService) RemoveTask(dbc dbctx.Context, courseID, taskID uuid.UUID) error {
	return s.mutate(dbc, courseID, "remove_task", func(inner dbctx.Context, _ *types.Course) error {
		ct, err := s.courseTaskRepo.GetByTask(inner, courseID, taskID)
		if err != nil {
			return err
		}
		if ct == nil {
			return errs.NotFound("task %s is not in course %s", taskID, courseID)
		}
		return s.courseTaskRepo.DeleteByIDs(inner, []uuid.UUID{ct.ID})
	})
}

// SwapTasks exchanges the orderings of two tasks of the course. Both must sit
// in the same milestone.
func (s *courseStructureService) SwapTasks(dbc dbctx.Context, courseID, a, b uuid.UUID) ([]ordering.Change, error) {
	var changes []ordering.Change
	err := s.mutate(dbc, courseID, "swap_tasks", func(inner dbctx.Context, _ *types.Course) error {
		if a == b {
			return ordering.ErrNoChanges
		}
		rows, err := s.courseTaskRepo.GetByTasks(inner, courseID, []uuid.UUID{a, b})
		if err != nil {
			return err
		}
		byTask := make(map[uuid.UUID]*types.CourseTask, len(rows))
		for _, r := range rows {
			byTask[r.TaskID] = r
		}
		for _, id := range []uuid.UUID{a, b} {
			if byTask[id] == nil {
				return errs.NotFound("task %s is not in course %s", id, courseID)
			}
		}
		ra, rb := byTask[a], byTask[b]
		if !sameScope(ra.MilestoneID, rb.MilestoneID) {
			return errs.Invalid("tasks %s and %s belong to different milestones", a, b)
		}
		changes, err = ordering.Swap(
			ordering.Item{ID: ra.ID, Ordering: ra.Ordering},
			ordering.Item{ID: rb.ID, Ordering: rb.Ordering},
		)
		if err != nil {
			return err
		}
		return s.applyTaskChanges(inner, changes)
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// MoveTask moves the task at index from to index to within one milestone's tasks.
func (s *courseStructureService) MoveTask(dbc dbctx.Context, courseID uuid.UUID, milestoneID *uuid.UUID, from, to int) ([]ordering.Change, error) {
	if milestoneID != nil && *milestoneID == uuid.Nil {
		milestoneID = nil
	}
	var changes []ordering.Change
	err := s.mutate(dbc, courseID, "move_task", func(inner dbctx.Context, _ *types.Course) error {
		rows, err := s.courseTaskRepo.ListByScope(inner, courseID, milestoneID)
		if err != nil {
			return err
		}
		changes, err = ordering.Move(taskItems(rows), from, to)
		if err != nil {
			return err
		}
		return s.applyTaskChanges(inner, changes)
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *courseStructureService) GetTree(dbc dbctx.Context, courseID uuid.UUID) (*CourseTree, error) {
	tree, err := s.tree.load(dbc, courseID, false)
	if err != nil {
		return nil, toAPIError("get course tree", err)
	}
	return tree, nil
}

type taskScope struct {
	milestoneID *uuid.UUID
	rows        []*types.CourseTask
}

// taskScopes groups a course's task rows by milestone, unassigned scope first,
// then in order of first appearance.
func taskScopes(rows []*types.CourseTask) []taskScope {
	var out []taskScope
	unassigned := taskScope{}
	idx := map[uuid.UUID]int{}
	for _, r := range rows {
		if r.MilestoneID == nil {
			unassigned.rows = append(unassigned.rows, r)
			continue
		}
		i, ok := idx[*r.MilestoneID]
		if !ok {
			id := *r.MilestoneID
			out = append(out, taskScope{milestoneID: &id})
			i = len(out) - 1
			idx[id] = i
		}
		out[i].rows = append(out[i].rows, r)
	}
	if len(unassigned.rows) > 0 {
		out = append([]taskScope{unassigned}, out...)
	}
	return out
}

func (s *courseStructureService) Check(dbc dbctx.Context, courseID uuid.UUID) (*CheckReport, error) {
	report := &CheckReport{CourseID: courseID, OK: true, Scopes: []ScopeReport{}}
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		course, err := s.courseRepo.GetByID(inner, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return errs.NotFound("course %s", courseID)
		}
		cms, err := s.courseMilestoneRepo.ListByCourse(inner, courseID)
		if err != nil {
			return err
		}
		if v := ordering.Check(milestoneItems(cms)); len(v) > 0 {
			report.Scopes = append(report.Scopes, ScopeReport{Kind: ScopeMilestones, Size: len(cms), Violations: v})
		}
		cts, err := s.courseTaskRepo.ListByCourse(inner, courseID)
		if err != nil {
			return err
		}
		for _, scope := range taskScopes(cts) {
			if v := ordering.Check(taskItems(scope.rows)); len(v) > 0 {
				report.Scopes = append(report.Scopes, ScopeReport{Kind: ScopeTasks, MilestoneID: scope.milestoneID, Size: len(scope.rows), Violations: v})
			}
		}
		return nil
	})
	if err != nil {
		return nil, toAPIError("check course ordering", err)
	}
	report.OK = len(report.Scopes) == 0
	return report, nil
}

// Renumber rewrites every scope of the course to 0..n-1 and returns the rows it changed.
func (s *courseStructureService) Renumber(dbc dbctx.Context, courseID uuid.UUID) ([]ordering.Change, error) {
	var all []ordering.Change
	err := s.mutate(dbc, courseID, "renumber", func(inner dbctx.Context, _ *types.Course) error {
		cms, err := s.courseMilestoneRepo.ListByCourse(inner, courseID)
		if err != nil {
			return err
		}
		changes := ordering.Renumber(milestoneItems(cms))
		if err := s.applyMilestoneChanges(inner, changes); err != nil {
			return err
		}
		all = append(all, changes...)

		cts, err := s.courseTaskRepo.ListByCourse(inner, courseID)
		if err != nil {
			return err
		}
		for _, scope := range taskScopes(cts) {
			changes := ordering.Renumber(taskItems(scope.rows))
			if err := s.applyTaskChanges(inner, changes); err != nil {
				return err
			}
			all = append(all, changes...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
