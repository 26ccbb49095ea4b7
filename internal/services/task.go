package services

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/apierr"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type TaskInput struct {
	Type               string          `json:"type"`
	Title              string          `json:"title"`
	Blocks             json.RawMessage `json:"blocks,omitempty"`
	Status             string          `json:"status,omitempty"`
	ScheduledPublishAt *time.Time      `json:"scheduled_publish_at,omitempty"`
}

type TaskService interface {
	Create(dbc dbctx.Context, orgID uuid.UUID, in TaskInput) (*types.Task, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	Publish(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	// PublishDue publishes every draft whose scheduled_publish_at is at or before now.
	PublishDue(dbc dbctx.Context, now time.Time) (int, error)
}

type taskService struct {
	db             *gorm.DB
	log            *logger.Logger
	notify         CourseNotifier
	orgRepo        repos.OrganizationRepo
	taskRepo       repos.TaskRepo
	courseTaskRepo repos.CourseTaskRepo
}

func NewTaskService(
	db *gorm.DB,
	baseLog *logger.Logger,
	notify CourseNotifier,
	orgRepo repos.OrganizationRepo,
	taskRepo repos.TaskRepo,
	courseTaskRepo repos.CourseTaskRepo,
) TaskService {
	if notify == nil {
		notify = NewCourseNotifier(nil)
	}
	return &taskService{
		db:             db,
		log:            baseLog.With("service", "TaskService"),
		notify:         notify,
		orgRepo:        orgRepo,
		taskRepo:       taskRepo,
		courseTaskRepo: courseTaskRepo,
	}
}

func (s *taskService) Create(dbc dbctx.Context, orgID uuid.UUID, in TaskInput) (*types.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("title is required"))
	}
	taskType := strings.ToLower(strings.TrimSpace(in.Type))
	if taskType == "" {
		taskType = types.TaskTypeLearningMaterial
	}
	if taskType != types.TaskTypeLearningMaterial && taskType != types.TaskTypeQuiz {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("unknown task type %q", in.Type))
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = types.TaskStatusDraft
	}
	if status != types.TaskStatusDraft && status != types.TaskStatusPublished {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("unknown task status %q", in.Status))
	}
	blocks := []byte(in.Blocks)
	if len(blocks) == 0 {
		blocks = []byte("[]")
	}
	if !json.Valid(blocks) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("blocks must be valid JSON"))
	}
	var scheduled *time.Time
	if in.ScheduledPublishAt != nil && !in.ScheduledPublishAt.IsZero() {
		utc := in.ScheduledPublishAt.UTC()
		scheduled = &utc
	}

	var out *types.Task
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		org, err := s.orgRepo.GetByID(inner, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return errs.NotFound("organization %s", orgID)
		}
		t := &types.Task{
			OrgID:              orgID,
			Type:               taskType,
			Title:              title,
			Blocks:             datatypes.JSON(blocks),
			Status:             status,
			ScheduledPublishAt: scheduled,
		}
		if _, err := s.taskRepo.Create(inner, []*types.Task{t}); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, toAPIError("create task", err)
	}
	s.log.Info("task created", "task_id", out.ID, "org_id", orgID, "status", status)
	return out, nil
}

func (s *taskService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	t, err := s.taskRepo.GetByID(dbc, id)
	if err != nil {
		return nil, toAPIError("get task", err)
	}
	if t == nil {
		return nil, apierr.New(http.StatusNotFound, "task_not_found", errs.NotFound("task %s", id))
	}
	return t, nil
}

// Delete removes the task and every course placement of it. Sibling orderings
// are left with a gap.
func (s *taskService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	var removed []*types.CourseTask
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		t, err := s.taskRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if t == nil {
			return errs.NotFound("task %s", id)
		}
		removed, err = s.courseTaskRepo.DeleteByTaskIDs(inner, []uuid.UUID{id})
		if err != nil {
			return err
		}
		return s.taskRepo.DeleteByIDs(inner, []uuid.UUID{id})
	})
	if err != nil {
		return toAPIError("delete task", err)
	}
	s.log.Info("task deleted", "task_id", id, "placements", len(removed))
	for _, courseID := range courseIDsOf(removed) {
		s.notify.StructureChanged(dbc.Ctx, courseID, "task_deleted")
	}
	return nil
}

func (s *taskService) Publish(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	var (
		out        *types.Task
		placements []*types.CourseTask
		changed    bool
	)
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		t, err := s.taskRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if t == nil {
			return errs.NotFound("task %s", id)
		}
		n, err := s.taskRepo.MarkPublished(inner, []uuid.UUID{id})
		if err != nil {
			return err
		}
		changed = n > 0
		if changed {
			placements, err = s.courseTaskRepo.ListByTaskIDs(inner, []uuid.UUID{id})
			if err != nil {
				return err
			}
		}
		out, err = s.taskRepo.GetByID(inner, id)
		return err
	})
	if err != nil {
		return nil, toAPIError("publish task", err)
	}
	if changed {
		s.log.Info("task published", "task_id", id)
		for _, courseID := range courseIDsOf(placements) {
			s.notify.TaskPublished(dbc.Ctx, courseID, id)
		}
	}
	return out, nil
}

func (s *taskService) PublishDue(dbc dbctx.Context, now time.Time) (int, error) {
	var (
		published  []uuid.UUID
		placements []*types.CourseTask
	)
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		due, err := s.taskRepo.ListDueForPublish(inner, now, 0)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(due))
		for _, t := range due {
			ids = append(ids, t.ID)
		}
		if _, err := s.taskRepo.MarkPublished(inner, ids); err != nil {
			return err
		}
		placements, err = s.courseTaskRepo.ListByTaskIDs(inner, ids)
		if err != nil {
			return err
		}
		published = ids
		return nil
	})
	if err != nil {
		s.log.Warn("publish due tasks failed", "error", err)
		return 0, toAPIError("publish due tasks", err)
	}
	if len(published) > 0 {
		s.log.Info("scheduled tasks published", "count", len(published))
	}
	for _, ct := range placements {
		s.notify.TaskPublished(dbc.Ctx, ct.CourseID, ct.TaskID)
	}
	return len(published), nil
}

func courseIDsOf(rows []*types.CourseTask) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CourseID)
	}
	return dedupeIDs(ids)
}
