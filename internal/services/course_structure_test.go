package services

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/learning/ordering"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
	"github.com/yungbote/cohort-backend/internal/realtime"
)

type courseFixture struct {
	org    *types.Organization
	course *types.Course
}

func (e *testEnv) seedCourse(t *testing.T, slug string) courseFixture {
	t.Helper()
	org, err := e.orgs.Create(e.dbc, "Org "+slug, slug)
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	course, err := e.courses.Create(e.dbc, org.ID, "Course "+slug)
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return courseFixture{org: org, course: course}
}

func (e *testEnv) newMilestone(t *testing.T, orgID uuid.UUID, name string) *types.Milestone {
	t.Helper()
	m, err := e.milestones.Create(e.dbc, orgID, name, "")
	if err != nil {
		t.Fatalf("create milestone: %v", err)
	}
	return m
}

func (e *testEnv) newTask(t *testing.T, orgID uuid.UUID, title, status string) *types.Task {
	t.Helper()
	task, err := e.tasks.Create(e.dbc, orgID, TaskInput{Title: title, Status: status})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func (e *testEnv) milestoneOrder(t *testing.T, courseID uuid.UUID) ([]uuid.UUID, []int) {
	t.Helper()
	tree, err := e.structure.GetTree(e.dbc, courseID)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	ids := make([]uuid.UUID, 0, len(tree.Milestones))
	ords := make([]int, 0, len(tree.Milestones))
	for _, m := range tree.Milestones {
		ids = append(ids, m.MilestoneID)
		ords = append(ords, m.Ordering)
	}
	return ids, ords
}

func sameIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddMilestoneAppendsAndInserts(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")

	a := env.newMilestone(t, fx.org.ID, "a")
	b := env.newMilestone(t, fx.org.ID, "b")
	c := env.newMilestone(t, fx.org.ID, "c")

	for _, m := range []*types.Milestone{a, b} {
		if _, err := env.structure.AddMilestone(env.dbc, fx.course.ID, m.ID, nil); err != nil {
			t.Fatalf("AddMilestone: %v", err)
		}
	}
	row, err := env.structure.AddMilestone(env.dbc, fx.course.ID, c.ID, intPtr(1))
	if err != nil {
		t.Fatalf("AddMilestone at 1: %v", err)
	}
	if row.Ordering != 1 {
		t.Fatalf("inserted ordering: want 1 got %d", row.Ordering)
	}

	ids, ords := env.milestoneOrder(t, fx.course.ID)
	if !sameIDs(ids, []uuid.UUID{a.ID, c.ID, b.ID}) {
		t.Fatalf("unexpected milestone order")
	}
	if fmt.Sprint(ords) != "[0 1 2]" {
		t.Fatalf("orderings: want [0 1 2] got %v", ords)
	}
	if n := env.emit.count(realtime.SSEEventCourseStructureChanged); n != 3 {
		t.Fatalf("structure events: want 3 got %d", n)
	}
}

func TestAddMilestoneRejections(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")
	other := env.seedCourse(t, "other")
	m := env.newMilestone(t, fx.org.ID, "m")
	foreign := env.newMilestone(t, other.org.ID, "foreign")

	_, err := env.structure.AddMilestone(env.dbc, fx.course.ID, m.ID, intPtr(-1))
	wantStatus(t, err, http.StatusBadRequest)

	_, err = env.structure.AddMilestone(env.dbc, uuid.New(), m.ID, nil)
	wantStatus(t, err, http.StatusNotFound)

	_, err = env.structure.AddMilestone(env.dbc, fx.course.ID, uuid.New(), nil)
	wantStatus(t, err, http.StatusNotFound)

	_, err = env.structure.AddMilestone(env.dbc, fx.course.ID, foreign.ID, nil)
	wantStatus(t, err, http.StatusBadRequest)

	if _, err := env.structure.AddMilestone(env.dbc, fx.course.ID, m.ID, nil); err != nil {
		t.Fatalf("AddMilestone: %v", err)
	}
	_, err = env.structure.AddMilestone(env.dbc, fx.course.ID, m.ID, nil)
	wantStatus(t, err, http.StatusBadRequest)

	if n := env.emit.count(realtime.SSEEventCourseStructureChanged); n != 1 {
		t.Fatalf("rejected changes must not emit events, got %d", n)
	}
}

func TestSwapMilestonesIsItsOwnInverse(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")
	a := env.newMilestone(t, fx.org.ID, "a")
	b := env.newMilestone(t, fx.org.ID, "b")
	c := env.newMilestone(t, fx.org.ID, "c")
	for _, m := range []*types.Milestone{a, b, c} {
		if _, err := env.structure.AddMilestone(env.dbc, fx.course.ID, m.ID, nil); err != nil {
			t.Fatalf("AddMilestone: %v", err)
		}
	}
	before, beforeOrds := env.milestoneOrder(t, fx.course.ID)

	changes, err := env.structure.SwapMilestones(env.dbc, fx.course.ID, a.ID, c.ID)
	if err != nil {
		t.Fatalf("SwapMilestones: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("swap should change 2 rows, got %d", len(changes))
	}
	mid, _ := env.milestoneOrder(t, fx.course.ID)
	if !sameIDs(mid, []uuid.UUID{c.ID, b.ID, a.ID}) {
		t.Fatalf("unexpected order after swap")
	}

	if _, err := env.structure.SwapMilestones(env.dbc, fx.course.ID, a.ID, c.ID); err != nil {
		t.Fatalf("SwapMilestones again: %v", err)
	}
	after, afterOrds := env.milestoneOrder(t, fx.course.ID)
	if !sameIDs(before, after) || fmt.Sprint(beforeOrds) != fmt.Sprint(afterOrds) {
		t.Fatalf("double swap should restore orderings: %v -> %v", beforeOrds, afterOrds)
	}

	_, err = env.structure.SwapMilestones(env.dbc, fx.course.ID, a.ID, uuid.New())
	wantStatus(t, err, http.StatusNotFound)
	_, err = env.structure.SwapMilestones(env.dbc, fx.course.ID, a.ID, a.ID)
	wantStatus(t, err, http.StatusBadRequest)
}

func TestMoveMilestone(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")
	ms := make([]*types.Milestone, 4)
	for i := range ms {
		ms[i] = env.newMilestone(t, fx.org.ID, fmt.Sprintf("m%d", i))
		if _, err := env.structure.AddMilestone(env.dbc, fx.course.ID, ms[i].ID, nil); err != nil {
			t.Fatalf("AddMilestone: %v", err)
		}
	}

	changes, err := env.structure.MoveMilestone(env.dbc, fx.course.ID, 0, 2)
	if err != nil {
		t.Fatalf("MoveMilestone: %v", err)
	}
	if len(changes) != 3 {
		t.Fatalf("move 0->2 should rewrite 3 rows, got %d", len(changes))
	}
	ids, ords := env.milestoneOrder(t, fx.course.ID)
	if !sameIDs(ids, []uuid.UUID{ms[1].ID, ms[2].ID, ms[0].ID, ms[3].ID}) {
		t.Fatalf("unexpected order after move")
	}
	if fmt.Sprint(ords) != "[0 1 2 3]" {
		t.Fatalf("orderings: %v", ords)
	}

	events := env.emit.count(realtime.SSEEventCourseStructureChanged)
	_, err = env.structure.MoveMilestone(env.dbc, fx.course.ID, 1, 1)
	wantStatus(t, err, http.StatusBadRequest)
	if !errors.Is(err, ordering.ErrNoChanges) {
		t.Fatalf("equal positions should report no changes, got %v", err)
	}
	if env.emit.count(realtime.SSEEventCourseStructureChanged) != events {
		t.Fatalf("no-op move must not emit")
	}

	_, err = env.structure.MoveMilestone(env.dbc, fx.course.ID, 0, 9)
	wantStatus(t, err, http.StatusBadRequest)
}

func TestTaskScopes(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")
	m1 := env.newMilestone(t, fx.org.ID, "m1")
	m2 := env.newMilestone(t, fx.org.ID, "m2")
	for _, m := range []*types.Milestone{m1, m2} {
		if _, err := env.structure.AddMilestone(env.dbc, fx.course.ID, m.ID, nil); err != nil {
			t.Fatalf("AddMilestone: %v", err)
		}
	}
	t1 := env.newTask(t, fx.org.ID, "t1", types.TaskStatusPublished)
	t2 := env.newTask(t, fx.org.ID, "t2", types.TaskStatusPublished)
	t3 := env.newTask(t, fx.org.ID, "t3", types.TaskStatusPublished)

	for _, tk := range []*types.Task{t1, t2} {
		row, err := env.structure.AddTask(env.dbc, fx.course.ID, tk.ID, &m1.ID, nil)
		if err != nil {
			t.Fatalf("AddTask: %v", err)
		}
		if *row.MilestoneID != m1.ID {
			t.Fatalf("task placed in wrong milestone")
		}
	}
	row, err := env.structure.AddTask(env.dbc, fx.course.ID, t3.ID, &m2.ID, nil)
	if err != nil {
		t.Fatalf("AddTask m2: %v", err)
	}
	if row.Ordering != 0 {
		t.Fatalf("each milestone is its own scope; want ordering 0 got %d", row.Ordering)
	}

	_, err = env.structure.SwapTasks(env.dbc, fx.course.ID, t1.ID, t3.ID)
	wantStatus(t, err, http.StatusBadRequest)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("cross-milestone swap should be invalid argument, got %v", err)
	}
	_, err = env.structure.SwapTasks(env.dbc, fx.course.ID, t1.ID, uuid.New())
	wantStatus(t, err, http.StatusNotFound)

	if _, err := env.structure.SwapTasks(env.dbc, fx.course.ID, t1.ID, t2.ID); err != nil {
		t.Fatalf("SwapTasks: %v", err)
	}
	tree, err := env.structure.GetTree(env.dbc, fx.course.ID)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if got := tree.Milestones[0].Tasks; len(got) != 2 || got[0].TaskID != t2.ID || got[1].TaskID != t1.ID {
		t.Fatalf("swap did not reorder milestone tasks")
	}

	if _, err := env.structure.MoveTask(env.dbc, fx.course.ID, &m1.ID, 1, 0); err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	_, err = env.structure.MoveTask(env.dbc, fx.course.ID, &m2.ID, 0, 0)
	wantStatus(t, err, http.StatusBadRequest)

	_, err = env.structure.AddTask(env.dbc, fx.course.ID, t1.ID, nil, nil)
	wantStatus(t, err, http.StatusBadRequest)
	missing := uuid.New()
	t4 := env.newTask(t, fx.org.ID, "t4", types.TaskStatusDraft)
	_, err = env.structure.AddTask(env.dbc, fx.course.ID, t4.ID, &missing, nil)
	wantStatus(t, err, http.StatusNotFound)

	if err := env.structure.RemoveTask(env.dbc, fx.course.ID, t3.ID); err != nil {
		t.Fatalf("RemoveTask: %v", err)
	}
	wantStatus(t, env.structure.RemoveTask(env.dbc, fx.course.ID, t3.ID), http.StatusNotFound)
}

func TestRemoveMilestoneDetachesTasks(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")
	m := env.newMilestone(t, fx.org.ID, "m")
	if _, err := env.structure.AddMilestone(env.dbc, fx.course.ID, m.ID, nil); err != nil {
		t.Fatalf("AddMilestone: %v", err)
	}
	loose := env.newTask(t, fx.org.ID, "loose", types.TaskStatusPublished)
	if _, err := env.structure.AddTask(env.dbc, fx.course.ID, loose.ID, nil, nil); err != nil {
		t.Fatalf("AddTask loose: %v", err)
	}
	a := env.newTask(t, fx.org.ID, "a", types.TaskStatusPublished)
	b := env.newTask(t, fx.org.ID, "b", types.TaskStatusPublished)
	for _, tk := range []*types.Task{a, b} {
		if _, err := env.structure.AddTask(env.dbc, fx.course.ID, tk.ID, &m.ID, nil); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
	}

	if err := env.structure.RemoveMilestone(env.dbc, fx.course.ID, m.ID); err != nil {
		t.Fatalf("RemoveMilestone: %v", err)
	}
	tree, err := env.structure.GetTree(env.dbc, fx.course.ID)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree.Milestones) != 0 {
		t.Fatalf("milestone should be gone")
	}
	got := tree.Unassigned
	if len(got) != 3 || got[0].TaskID != loose.ID || got[1].TaskID != a.ID || got[2].TaskID != b.ID {
		t.Fatalf("detached tasks should follow existing unassigned tasks in order")
	}
	if got[1].Ordering != 1 || got[2].Ordering != 2 {
		t.Fatalf("detached orderings: %d,%d", got[1].Ordering, got[2].Ordering)
	}

	wantStatus(t, env.structure.RemoveMilestone(env.dbc, fx.course.ID, m.ID), http.StatusNotFound)
}

func TestRandomOperationsKeepOrderingsDistinct(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")
	rng := rand.New(rand.NewSource(7))

	var milestones []*types.Milestone
	var tasks []*types.Task
	for step := 0; step < 80; step++ {
		switch op := rng.Intn(6); {
		case op == 0 || len(milestones) < 2:
			m := env.newMilestone(t, fx.org.ID, fmt.Sprintf("m%d", step))
			var at *int
			if len(milestones) > 0 && rng.Intn(2) == 0 {
				at = intPtr(rng.Intn(len(milestones) + 1))
			}
			if _, err := env.structure.AddMilestone(env.dbc, fx.course.ID, m.ID, at); err != nil {
				t.Fatalf("step %d AddMilestone: %v", step, err)
			}
			milestones = append(milestones, m)
		case op == 1:
			tk := env.newTask(t, fx.org.ID, fmt.Sprintf("t%d", step), types.TaskStatusPublished)
			m := milestones[rng.Intn(len(milestones))]
			if _, err := env.structure.AddTask(env.dbc, fx.course.ID, tk.ID, &m.ID, intPtr(rng.Intn(3))); err != nil {
				t.Fatalf("step %d AddTask: %v", step, err)
			}
			tasks = append(tasks, tk)
		case op == 2:
			a := milestones[rng.Intn(len(milestones))]
			b := milestones[rng.Intn(len(milestones))]
			if _, err := env.structure.SwapMilestones(env.dbc, fx.course.ID, a.ID, b.ID); err != nil && a.ID != b.ID {
				t.Fatalf("step %d SwapMilestones: %v", step, err)
			}
		case op == 3:
			from, to := rng.Intn(len(milestones)), rng.Intn(len(milestones))
			if _, err := env.structure.MoveMilestone(env.dbc, fx.course.ID, from, to); err != nil && from != to {
				t.Fatalf("step %d MoveMilestone: %v", step, err)
			}
		case op == 4 && len(tasks) > 1:
			a := tasks[rng.Intn(len(tasks))]
			b := tasks[rng.Intn(len(tasks))]
			_, _ = env.structure.SwapTasks(env.dbc, fx.course.ID, a.ID, b.ID)
		case op == 5 && len(tasks) > 0:
			m := milestones[rng.Intn(len(milestones))]
			_, _ = env.structure.MoveTask(env.dbc, fx.course.ID, &m.ID, 0, rng.Intn(3))
		}

		report, err := env.structure.Check(env.dbc, fx.course.ID)
		if err != nil {
			t.Fatalf("step %d Check: %v", step, err)
		}
		if !report.OK {
			t.Fatalf("step %d: ordering invariant broken: %+v", step, report.Scopes)
		}
	}
}

func TestConcurrentAppendsGetDistinctOrderings(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")
	const n = 12
	ms := make([]*types.Milestone, n)
	for i := range ms {
		ms[i] = env.newMilestone(t, fx.org.ID, fmt.Sprintf("m%d", i))
	}

	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for _, m := range ms {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := env.structure.AddMilestone(env.dbc, fx.course.ID, id, nil); err != nil {
				errCh <- err
			}
		}(m.ID)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("AddMilestone: %v", err)
	}

	report, err := env.structure.Check(env.dbc, fx.course.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.OK {
		t.Fatalf("concurrent appends produced duplicates: %+v", report.Scopes)
	}
	_, ords := env.milestoneOrder(t, fx.course.ID)
	for i, o := range ords {
		if o != i {
			t.Fatalf("expected contiguous orderings, got %v", ords)
		}
	}
}

func TestCheckAndRenumberRepairDuplicates(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seedCourse(t, "acme")
	a := env.newMilestone(t, fx.org.ID, "a")
	b := env.newMilestone(t, fx.org.ID, "b")

	// Simulate two writers that both read the same max ordering.
	for _, m := range []*types.Milestone{a, b} {
		row := &types.CourseMilestone{CourseID: fx.course.ID, MilestoneID: m.ID, Ordering: 5}
		if err := env.db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	report, err := env.structure.Check(env.dbc, fx.course.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.OK || len(report.Scopes) != 1 || report.Scopes[0].Kind != ScopeMilestones {
		t.Fatalf("expected one broken milestone scope, got %+v", report)
	}
	if v := report.Scopes[0].Violations; len(v) != 1 || v[0].Reason != "duplicate" || v[0].Ordering != 5 {
		t.Fatalf("unexpected violations %+v", v)
	}

	events := env.emit.count(realtime.SSEEventCourseStructureChanged)
	swapped, err := env.structure.SwapMilestones(env.dbc, fx.course.ID, a.ID, b.ID)
	wantStatus(t, err, http.StatusBadRequest)
	if !errors.Is(err, ordering.ErrNoChanges) || swapped != nil {
		t.Fatalf("swapping rows that share an ordering must fail, got changes=%+v err=%v", swapped, err)
	}
	if env.emit.count(realtime.SSEEventCourseStructureChanged) != events {
		t.Fatalf("rejected swap must not emit")
	}

	changes, err := env.structure.Renumber(env.dbc, fx.course.ID)
	if err != nil {
		t.Fatalf("Renumber: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("renumber should rewrite both rows, got %d", len(changes))
	}
	report, err = env.structure.Check(env.dbc, fx.course.ID)
	if err != nil || !report.OK {
		t.Fatalf("scope should be clean after renumber: err=%v report=%+v", err, report)
	}
	if swapped, err := env.structure.SwapMilestones(env.dbc, fx.course.ID, a.ID, b.ID); err != nil || len(swapped) != 2 {
		t.Fatalf("swap after renumber: changes=%+v err=%v", swapped, err)
	}

	_, err = env.structure.Check(env.dbc, uuid.New())
	wantStatus(t, err, http.StatusNotFound)
}
