package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/cohort-backend/internal/domain"
)

func SeedOrg(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string) *types.Organization {
	tb.Helper()
	o := &types.Organization{ID: uuid.New(), Name: "Org " + slug, Slug: slug}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed org: %v", err)
	}
	return o
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{ID: uuid.New(), Email: email, FirstName: "A", LastName: "B"}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCohort(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID) *types.Cohort {
	tb.Helper()
	c := &types.Cohort{ID: uuid.New(), OrgID: orgID, Name: "cohort"}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cohort: %v", err)
	}
	return c
}

func SeedMember(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, cohortID uuid.UUID, joinedAt time.Time) *types.UserCohort {
	tb.Helper()
	m := &types.UserCohort{ID: uuid.New(), UserID: userID, CohortID: cohortID, Role: types.RoleLearner, JoinedAt: joinedAt}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed member: %v", err)
	}
	return m
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID) *types.Course {
	tb.Helper()
	c := &types.Course{ID: uuid.New(), OrgID: orgID, Name: "course"}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedMilestone(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, name string) *types.Milestone {
	tb.Helper()
	m := &types.Milestone{ID: uuid.New(), OrgID: orgID, Name: name}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed milestone: %v", err)
	}
	return m
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, title, status string) *types.Task {
	tb.Helper()
	t := &types.Task{
		ID:     uuid.New(),
		OrgID:  orgID,
		Type:   types.TaskTypeLearningMaterial,
		Title:  title,
		Status: status,
		Blocks: datatypes.JSON([]byte("[]")),
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}

func SeedCourseMilestone(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, milestoneID uuid.UUID, ordering int) *types.CourseMilestone {
	tb.Helper()
	cm := &types.CourseMilestone{ID: uuid.New(), CourseID: courseID, MilestoneID: milestoneID, Ordering: ordering}
	if err := tx.WithContext(ctx).Create(cm).Error; err != nil {
		tb.Fatalf("seed course milestone: %v", err)
	}
	return cm
}

func SeedCourseTask(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, taskID uuid.UUID, milestoneID *uuid.UUID, ordering int) *types.CourseTask {
	tb.Helper()
	ct := &types.CourseTask{ID: uuid.New(), CourseID: courseID, TaskID: taskID, MilestoneID: milestoneID, Ordering: ordering}
	if err := tx.WithContext(ctx).Create(ct).Error; err != nil {
		tb.Fatalf("seed course task: %v", err)
	}
	return ct
}

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }
