package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
)

func TestTaskRepo_DueForPublish(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTaskRepo(db, testutil.Logger(t))

	o := testutil.SeedOrg(t, ctx, tx, "org")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := &types.Task{OrgID: o.ID, Type: types.TaskTypeQuiz, Title: "due", Status: types.TaskStatusDraft, ScheduledPublishAt: &past}
	later := &types.Task{OrgID: o.ID, Type: types.TaskTypeQuiz, Title: "later", Status: types.TaskStatusDraft, ScheduledPublishAt: &future}
	unscheduled := &types.Task{OrgID: o.ID, Type: types.TaskTypeQuiz, Title: "unscheduled", Status: types.TaskStatusDraft}
	if _, err := repo.Create(dbc, []*types.Task{due, later, unscheduled}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, err := repo.ListDueForPublish(dbc, now, 0)
	if err != nil {
		t.Fatalf("ListDueForPublish: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != due.ID {
		t.Fatalf("expected only the due task, got %d rows", len(rows))
	}

	n, err := repo.MarkPublished(dbc, []uuid.UUID{due.ID})
	if err != nil || n != 1 {
		t.Fatalf("MarkPublished: n=%d err=%v", n, err)
	}
	if n, err := repo.MarkPublished(dbc, []uuid.UUID{due.ID}); err != nil || n != 0 {
		t.Fatalf("MarkPublished twice should be a no-op: n=%d err=%v", n, err)
	}
	got, err := repo.GetByID(dbc, due.ID)
	if err != nil || got == nil || got.Status != types.TaskStatusPublished {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	if rows, err := repo.ListDueForPublish(dbc, now, 0); err != nil || len(rows) != 0 {
		t.Fatalf("published task must not be due again: err=%v rows=%d", err, len(rows))
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{later.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, later.ID); err != nil || got != nil {
		t.Fatalf("deleted task should be hidden: err=%v got=%+v", err, got)
	}
}
