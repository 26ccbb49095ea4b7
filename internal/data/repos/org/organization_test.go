package org

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
)

func TestOrganizationRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewOrganizationRepo(db, testutil.Logger(t))

	o := &types.Organization{Name: "Acme", Slug: "acme"}
	if _, err := repo.Create(dbc, []*types.Organization{o}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.ID == uuid.Nil {
		t.Fatalf("Create should assign an id")
	}

	got, err := repo.GetByID(dbc, o.ID)
	if err != nil || got == nil || got.Slug != "acme" {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	got, err = repo.GetBySlug(dbc, " acme ")
	if err != nil || got == nil || got.ID != o.ID {
		t.Fatalf("GetBySlug: err=%v got=%+v", err, got)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID missing: err=%v got=%+v", err, got)
	}

	_, err = repo.Create(dbc, []*types.Organization{{Name: "Other", Slug: "acme"}})
	if err == nil {
		t.Fatalf("duplicate slug should fail")
	}
	if !errors.Is(errs.MapStore("create org", err), errs.ErrConflict) {
		t.Fatalf("duplicate slug should map to conflict: %v", err)
	}
}
