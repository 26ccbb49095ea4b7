package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	"github.com/yungbote/cohort-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/cohort-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cohort-backend/internal/http/middleware"
	"github.com/yungbote/cohort-backend/internal/platform/authtoken"
	"github.com/yungbote/cohort-backend/internal/platform/ctxutil"
	"github.com/yungbote/cohort-backend/internal/realtime"
	"github.com/yungbote/cohort-backend/internal/services"
)

const routerSecret = "router-secret"

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	hub := realtime.NewSSEHub(log)
	notify := services.NewCourseNotifier(&services.HubEmitter{Hub: hub})
	locks := services.NewCourseLocks()

	engine := NewRouter(RouterConfig{
		Log:                    log,
		AuthMiddleware:         httpMW.NewAuthMiddleware(log, routerSecret),
		HealthHandler:          httpH.NewHealthHandler(db),
		OrgHandler:             httpH.NewOrgHandler(services.NewOrgService(db, log, orgRepo)),
		UserHandler:            httpH.NewUserHandler(services.NewUserService(db, log, userRepo)),
		CohortHandler:          httpH.NewCohortHandler(services.NewCohortService(db, log, orgRepo, userRepo, cohortRepo, userCohortRepo, courseRepo, courseCohortRepo)),
		CourseHandler:          httpH.NewCourseHandler(services.NewCourseService(db, log, locks, notify, orgRepo, courseRepo, courseMilestoneRepo, courseTaskRepo, courseCohortRepo)),
		CourseStructureHandler: httpH.NewCourseStructureHandler(services.NewCourseStructureService(db, log, locks, notify, courseRepo, milestoneRepo, taskRepo, courseMilestoneRepo, courseTaskRepo)),
		MilestoneHandler:       httpH.NewMilestoneHandler(services.NewMilestoneService(db, log, orgRepo, milestoneRepo)),
		TaskHandler:            httpH.NewTaskHandler(services.NewTaskService(db, log, notify, orgRepo, taskRepo, courseTaskRepo)),
		LearnerHandler:         httpH.NewLearnerHandler(services.NewLearnerService(db, log, userCohortRepo, courseCohortRepo, courseRepo, milestoneRepo, taskRepo, courseMilestoneRepo, courseTaskRepo)),
		RealtimeHandler:        httpH.NewRealtimeHandler(log, hub),
	})
	return &apiClient{t: t, engine: engine}
}

func (a *apiClient) token(sub uuid.UUID, role string) string {
	a.t.Helper()
	tok, err := authtoken.Issue([]byte(routerSecret), sub, role, time.Hour, time.Now())
	if err != nil {
		a.t.Fatalf("Issue: %v", err)
	}
	return tok
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (a *apiClient) do(method, path, tok string, body any, want int, out any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	if rec.Code != want {
		a.t.Fatalf("%s %s: want %d got %d body=%s", method, path, want, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode: %v body=%s", method, path, err, rec.Body.String())
		}
	}
}

type idEnvelope map[string]struct {
	ID uuid.UUID `json:"id"`
}

func (a *apiClient) create(path, tok, key string, body any) uuid.UUID {
	a.t.Helper()
	var out idEnvelope
	a.do(http.MethodPost, path, tok, body, http.StatusCreated, &out)
	id := out[key].ID
	if id == uuid.Nil {
		a.t.Fatalf("POST %s: missing %s.id", path, key)
	}
	return id
}

func TestRouterAuthGates(t *testing.T) {
	api := newAPI(t)
	learner := api.token(uuid.New(), ctxutil.RoleLearner)

	api.do(http.MethodGet, "/healthcheck", "", nil, http.StatusOK, nil)
	api.do(http.MethodPost, "/api/orgs", "", map[string]string{"name": "x"}, http.StatusUnauthorized, nil)

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	api.do(http.MethodPost, "/api/orgs", learner, map[string]string{"name": "x"}, http.StatusForbidden, &env)
	if env.Error.Code != "forbidden" {
		t.Fatalf("unexpected error code %q", env.Error.Code)
	}
	api.do(http.MethodGet, "/api/courses/not-a-uuid", api.token(uuid.New(), ctxutil.RoleAdmin), nil, http.StatusBadRequest, nil)
}

func TestRouterCourseLifecycle(t *testing.T) {
	api := newAPI(t)
	admin := api.token(uuid.New(), ctxutil.RoleAdmin)

	orgID := api.create("/api/orgs", admin, "org", map[string]string{"name": "Acme"})
	courseID := api.create("/api/orgs/"+orgID.String()+"/courses", admin, "course", map[string]string{"name": "Go 101"})

	var milestones []uuid.UUID
	for _, name := range []string{"Week 1", "Week 2", "Week 3"} {
		id := api.create("/api/orgs/"+orgID.String()+"/milestones", admin, "milestone", map[string]string{"name": name})
		api.do(http.MethodPost, "/api/courses/"+courseID.String()+"/milestones", admin, map[string]any{"milestone_id": id}, http.StatusCreated, nil)
		milestones = append(milestones, id)
	}
	for i, mID := range []uuid.UUID{milestones[0], milestones[2]} {
		taskID := api.create("/api/orgs/"+orgID.String()+"/tasks", admin, "task", map[string]any{
			"title":  "Task " + string(rune('A'+i)),
			"status": "published",
			"blocks": []map[string]string{{"kind": "text"}},
		})
		api.do(http.MethodPost, "/api/courses/"+courseID.String()+"/tasks", admin, map[string]any{"task_id": taskID, "milestone_id": mID}, http.StatusCreated, nil)
	}

	// swap the first two milestones, then swap back
	pair := map[string]any{"a": milestones[0], "b": milestones[1]}
	api.do(http.MethodPost, "/api/courses/"+courseID.String()+"/milestones/swap", admin, pair, http.StatusOK, nil)
	api.do(http.MethodPost, "/api/courses/"+courseID.String()+"/milestones/swap", admin, pair, http.StatusOK, nil)
	api.do(http.MethodPost, "/api/courses/"+courseID.String()+"/milestones/swap", admin, map[string]any{"a": milestones[0], "b": milestones[0]}, http.StatusBadRequest, nil)
	api.do(http.MethodPost, "/api/courses/"+courseID.String()+"/milestones/move", admin, map[string]any{"from": 1}, http.StatusBadRequest, nil)
	api.do(http.MethodPost, "/api/courses/"+courseID.String()+"/milestones/move", admin, map[string]any{"from": 1, "to": 1}, http.StatusBadRequest, nil)

	var check struct {
		Report struct {
			OK bool `json:"ok"`
		} `json:"report"`
	}
	api.do(http.MethodGet, "/api/courses/"+courseID.String()+"/check", admin, nil, http.StatusOK, &check)
	if !check.Report.OK {
		t.Fatalf("course orderings should be consistent")
	}

	// learner in a cohort with weekly drip anchored in the future
	userID := api.create("/api/users", admin, "user", map[string]string{"email": "learner@example.com"})
	cohortID := api.create("/api/orgs/"+orgID.String()+"/cohorts", admin, "cohort", map[string]string{"name": "Spring"})
	api.do(http.MethodPost, "/api/cohorts/"+cohortID.String()+"/members", admin, map[string]any{"user_ids": []uuid.UUID{userID}}, http.StatusCreated, nil)
	api.do(http.MethodPost, "/api/cohorts/"+cohortID.String()+"/courses", admin, map[string]any{
		"course_ids":      []uuid.UUID{courseID},
		"is_drip_enabled": true,
		"frequency_value": 1,
		"frequency_unit":  "fortnight",
	}, http.StatusBadRequest, nil)
	api.do(http.MethodPost, "/api/cohorts/"+cohortID.String()+"/courses", admin, map[string]any{
		"course_ids":      []uuid.UUID{courseID},
		"is_drip_enabled": true,
		"frequency_value": 1,
		"frequency_unit":  "week",
		"publish_at":      "2100-01-01T00:00:00Z",
	}, http.StatusCreated, nil)

	learner := api.token(userID, ctxutil.RoleLearner)
	var view struct {
		Course struct {
			Milestones []struct {
				MilestoneID uuid.UUID  `json:"milestone_id"`
				UnlockAt    *time.Time `json:"unlock_at"`
			} `json:"milestones"`
		} `json:"course"`
	}
	api.do(http.MethodGet, "/api/learner/cohorts/"+cohortID.String()+"/courses/"+courseID.String(), learner, nil, http.StatusOK, &view)
	if len(view.Course.Milestones) != 3 {
		t.Fatalf("expected 3 milestones, got %d", len(view.Course.Milestones))
	}
	if view.Course.Milestones[0].UnlockAt != nil || view.Course.Milestones[1].UnlockAt != nil {
		t.Fatalf("first non-empty milestone and the empty one must be open")
	}
	want := time.Date(2100, 1, 8, 0, 0, 0, 0, time.UTC)
	if got := view.Course.Milestones[2].UnlockAt; got == nil || !got.Equal(want) {
		t.Fatalf("third milestone: want %s got %v", want, got)
	}

	stranger := api.token(uuid.New(), ctxutil.RoleLearner)
	api.do(http.MethodGet, "/api/learner/cohorts/"+cohortID.String()+"/courses/"+courseID.String(), stranger, nil, http.StatusNotFound, nil)

	api.do(http.MethodDelete, "/api/courses/"+courseID.String(), admin, nil, http.StatusNoContent, nil)
	api.do(http.MethodGet, "/api/courses/"+courseID.String(), admin, nil, http.StatusNotFound, nil)
}
