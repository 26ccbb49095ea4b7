package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	u := &types.User{Email: "  Learner@Example.com ", FirstName: "Ada"}
	if _, err := repo.Create(dbc, []*types.User{u}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil || u.Email != "learner@example.com" {
		t.Fatalf("Create should assign id and normalise email: %+v", u)
	}

	if got, err := repo.GetByID(dbc, u.ID); err != nil || got == nil || got.FirstName != "Ada" {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	if rows, err := repo.GetByEmails(dbc, []string{"LEARNER@example.com", ""}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByEmails: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByIDs(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetByIDs(nil): err=%v len=%d", err, len(rows))
	}
}
