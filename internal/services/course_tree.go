package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/learning/drip"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
)

type CourseTree struct {
	Course     *types.Course    `json:"course"`
	Drip       *drip.Config     `json:"drip,omitempty"`
	Milestones []*TreeMilestone `json:"milestones"`
	Unassigned []*TreeTask      `json:"unassigned_tasks"`
}

type TreeMilestone struct {
	MilestoneID uuid.UUID   `json:"milestone_id"`
	Name        string      `json:"name"`
	Color       string      `json:"color,omitempty"`
	Ordering    int         `json:"ordering"`
	UnlockAt    *time.Time  `json:"unlock_at"`
	Tasks       []*TreeTask `json:"tasks"`
}

type TreeTask struct {
	TaskID   uuid.UUID      `json:"task_id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   string         `json:"status"`
	Ordering int            `json:"ordering"`
	Blocks   datatypes.JSON `json:"blocks,omitempty"`
}

// treeLoader assembles a course's milestone/task hierarchy in course order.
type treeLoader struct {
	courseRepo          repos.CourseRepo
	milestoneRepo       repos.MilestoneRepo
	taskRepo            repos.TaskRepo
	courseMilestoneRepo repos.CourseMilestoneRepo
	courseTaskRepo      repos.CourseTaskRepo
}

func (l *treeLoader) load(dbc dbctx.Context, courseID uuid.UUID, publishedOnly bool) (*CourseTree, error) {
	course, err := l.courseRepo.GetByID(dbc, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, errs.NotFound("course %s", courseID)
	}
	cms, err := l.courseMilestoneRepo.ListByCourse(dbc, courseID)
	if err != nil {
		return nil, err
	}
	cts, err := l.courseTaskRepo.ListByCourse(dbc, courseID)
	if err != nil {
		return nil, err
	}

	milestoneIDs := make([]uuid.UUID, 0, len(cms))
	for _, cm := range cms {
		milestoneIDs = append(milestoneIDs, cm.MilestoneID)
	}
	milestones, err := l.milestoneRepo.GetByIDs(dbc, milestoneIDs)
	if err != nil {
		return nil, err
	}
	milestoneByID := make(map[uuid.UUID]*types.Milestone, len(milestones))
	for _, m := range milestones {
		milestoneByID[m.ID] = m
	}

	taskIDs := make([]uuid.UUID, 0, len(cts))
	for _, ct := range cts {
		taskIDs = append(taskIDs, ct.TaskID)
	}
	tasks, err := l.taskRepo.GetByIDs(dbc, taskIDs)
	if err != nil {
		return nil, err
	}
	taskByID := make(map[uuid.UUID]*types.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}

	tree := &CourseTree{
		Course:     course,
		Milestones: make([]*TreeMilestone, 0, len(cms)),
		Unassigned: []*TreeTask{},
	}
	nodeByMilestone := make(map[uuid.UUID]*TreeMilestone, len(cms))
	for _, cm := range cms {
		m := milestoneByID[cm.MilestoneID]
		if m == nil {
			continue
		}
		node := &TreeMilestone{
			MilestoneID: m.ID,
			Name:        m.Name,
			Color:       m.Color,
			Ordering:    cm.Ordering,
			Tasks:       []*TreeTask{},
		}
		tree.Milestones = append(tree.Milestones, node)
		nodeByMilestone[m.ID] = node
	}

	// cts is ordered by ordering, so appends keep each scope sorted.
	for _, ct := range cts {
		t := taskByID[ct.TaskID]
		if t == nil {
			continue
		}
		if publishedOnly && t.Status != types.TaskStatusPublished {
			continue
		}
		leaf := &TreeTask{
			TaskID:   t.ID,
			Type:     t.Type,
			Title:    t.Title,
			Status:   t.Status,
			Ordering: ct.Ordering,
			Blocks:   t.Blocks,
		}
		if ct.MilestoneID == nil {
			tree.Unassigned = append(tree.Unassigned, leaf)
			continue
		}
		if node := nodeByMilestone[*ct.MilestoneID]; node != nil {
			node.Tasks = append(node.Tasks, leaf)
		}
	}
	return tree, nil
}
