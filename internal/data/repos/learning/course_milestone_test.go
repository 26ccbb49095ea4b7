package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/data/repos/testutil"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
)

func TestCourseMilestoneRepo_OrderingPrimitives(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCourseMilestoneRepo(db, testutil.Logger(t))

	o := testutil.SeedOrg(t, ctx, tx, "org")
	course := testutil.SeedCourse(t, ctx, tx, o.ID)
	other := testutil.SeedCourse(t, ctx, tx, o.ID)

	if max, err := repo.MaxOrdering(dbc, course.ID); err != nil || max != -1 {
		t.Fatalf("MaxOrdering on empty course: max=%d err=%v", max, err)
	}

	m1 := testutil.SeedMilestone(t, ctx, tx, o.ID, "m1")
	m2 := testutil.SeedMilestone(t, ctx, tx, o.ID, "m2")
	m3 := testutil.SeedMilestone(t, ctx, tx, o.ID, "m3")
	cm1 := testutil.SeedCourseMilestone(t, ctx, tx, course.ID, m1.ID, 0)
	cm2 := testutil.SeedCourseMilestone(t, ctx, tx, course.ID, m2.ID, 3)
	testutil.SeedCourseMilestone(t, ctx, tx, other.ID, m3.ID, 0)

	if max, err := repo.MaxOrdering(dbc, course.ID); err != nil || max != 3 {
		t.Fatalf("MaxOrdering: max=%d err=%v", max, err)
	}

	n, err := repo.ShiftFrom(dbc, course.ID, 1)
	if err != nil || n != 1 {
		t.Fatalf("ShiftFrom: n=%d err=%v", n, err)
	}
	rows, err := repo.ListByCourse(dbc, course.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByCourse: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != cm1.ID || rows[0].Ordering != 0 || rows[1].ID != cm2.ID || rows[1].Ordering != 4 {
		t.Fatalf("unexpected orderings after shift: %d,%d", rows[0].Ordering, rows[1].Ordering)
	}
	if rows, _ := repo.ListByCourse(dbc, other.ID); len(rows) != 1 || rows[0].Ordering != 0 {
		t.Fatalf("shift must not touch other courses")
	}

	if err := repo.SetOrdering(dbc, cm1.ID, 7); err != nil {
		t.Fatalf("SetOrdering: %v", err)
	}
	got, err := repo.GetByMilestone(dbc, course.ID, m1.ID)
	if err != nil || got == nil || got.Ordering != 7 {
		t.Fatalf("GetByMilestone: err=%v got=%+v", err, got)
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{cm1.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if max, err := repo.MaxOrdering(dbc, course.ID); err != nil || max != 4 {
		t.Fatalf("deleted rows must not count: max=%d err=%v", max, err)
	}
	if got, err := repo.GetByMilestone(dbc, course.ID, m1.ID); err != nil || got != nil {
		t.Fatalf("GetByMilestone after delete: err=%v got=%+v", err, got)
	}
}
