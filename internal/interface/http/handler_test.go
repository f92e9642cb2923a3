package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/taskmaster-api/internal/application"
	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
	"github.com/taskmaster/taskmaster-api/internal/domain/repository"
	"github.com/taskmaster/taskmaster-api/internal/interface/middleware"
	"github.com/taskmaster/taskmaster-api/pkg/helpers"
	"github.com/taskmaster/taskmaster-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// ---- in-memory repositories ----

type memUserRepo struct {
	users  map[string]*entity.User
	nextID int
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: map[string]*entity.User{}} }

func (m *memUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.Sessions = append([]entity.Session(nil), u.Sessions...)
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			cp.Sessions = append([]entity.Session(nil), u.Sessions...)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) UpdateSessions(_ context.Context, userID string, sessions []entity.Session) error {
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Sessions = append([]entity.Session(nil), sessions...)
	return nil
}

type memTaskRepo struct {
	tasks  map[string]*entity.Task
	nextID int
}

func newMemTaskRepo() *memTaskRepo { return &memTaskRepo{tasks: map[string]*entity.Task{}} }

func (m *memTaskRepo) Create(_ context.Context, t *entity.Task) error {
	m.nextID++
	t.ID = fmt.Sprintf("task-%d", m.nextID)
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memTaskRepo) ListByProject(_ context.Context, projectID string) ([]entity.Task, error) {
	out := []entity.Task{}
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTaskRepo) Update(_ context.Context, id, projectID string, patch repository.TaskPatch) (*entity.Task, error) {
	t, ok := m.tasks[id]
	if !ok || t.ProjectID != projectID {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	cp := *t
	return &cp, nil
}

func (m *memTaskRepo) Delete(_ context.Context, id, projectID string) (*entity.Task, error) {
	t, ok := m.tasks[id]
	if !ok || t.ProjectID != projectID {
		return nil, repository.ErrNotFound
	}
	delete(m.tasks, id)
	cp := *t
	return &cp, nil
}

type memProjectRepo struct {
	projects map[string]*entity.Project
	tasks    *memTaskRepo
	nextID   int
}

func newMemProjectRepo(tasks *memTaskRepo) *memProjectRepo {
	return &memProjectRepo{projects: map[string]*entity.Project{}, tasks: tasks}
}

func (m *memProjectRepo) Create(_ context.Context, p *entity.Project) error {
	m.nextID++
	p.ID = fmt.Sprintf("project-%d", m.nextID)
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *memProjectRepo) ListByUser(_ context.Context, userID string) ([]entity.Project, error) {
	out := []entity.Project{}
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProjectRepo) GetByID(_ context.Context, id, userID string) (*entity.Project, error) {
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProjectRepo) UpdateTitle(_ context.Context, id, userID, title string) (*entity.Project, error) {
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	p.Title = title
	cp := *p
	return &cp, nil
}

func (m *memProjectRepo) DeleteWithTasks(_ context.Context, id, userID string) (*entity.Project, error) {
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	for tid, t := range m.tasks.tasks {
		if t.ProjectID == id {
			delete(m.tasks.tasks, tid)
		}
	}
	delete(m.projects, id)
	cp := *p
	return &cp, nil
}

var (
	_ repository.UserRepository    = (*memUserRepo)(nil)
	_ repository.ProjectRepository = (*memProjectRepo)(nil)
	_ repository.TaskRepository    = (*memTaskRepo)(nil)
)

// ---- test server ----

type testServer struct {
	engine   *gin.Engine
	users    *memUserRepo
	projects *memProjectRepo
	tasks    *memTaskRepo
	auth     *application.Service
}

func newTestServer() *testServer {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	projects := newMemProjectRepo(tasks)

	logger := logrus.New()
	jwt := &helpers.JWTManager{Secret: []byte("test-secret"), AccessTTL: 15 * time.Minute}
	auth := application.NewService(users, jwt, 240*time.Hour, logger)

	userHandler := NewUserHandler(auth, logger)
	projectHandler := NewProjectHandler(projects, logger)
	taskHandler := NewTaskHandler(projects, tasks, logger)

	r := gin.New()
	root := r.Group("/")

	root.POST("/users", userHandler.Signup)
	root.POST("/users/login", userHandler.Login)

	session := root.Group("/")
	session.Use(middleware.VerifySession(auth))
	session.GET("/users/me/access-token", userHandler.AccessToken)
	session.POST("/users/logout", userHandler.Logout)

	authGroup := root.Group("/")
	authGroup.Use(middleware.Authenticate(jwt))
	authGroup.GET("/user", userHandler.Me)
	authGroup.GET("/project", projectHandler.List)
	authGroup.POST("/project", projectHandler.Create)
	authGroup.GET("/project/:id", projectHandler.Get)
	authGroup.PATCH("/project/:id", projectHandler.Patch)
	authGroup.DELETE("/project/:id", projectHandler.Delete)
	authGroup.GET("/project/:id/task", taskHandler.List)
	authGroup.POST("/project/:id/task", taskHandler.Create)
	authGroup.PATCH("/project/:id/task/:taskId", taskHandler.Patch)
	authGroup.DELETE("/project/:id/task/:taskId", taskHandler.Delete)

	return &testServer{engine: r, users: users, projects: projects, tasks: tasks, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// envelope mirrors pkg/response.APIResponse with untyped data.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, w)
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type authedUser struct {
	id           string
	accessToken  string
	refreshToken string
}

func (s *testServer) signup(t *testing.T, email, password string) authedUser {
	t.Helper()
	w := s.do(t, http.MethodPost, "/users", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u := decodeData[entity.User](t, w)
	return authedUser{
		id:           u.ID,
		accessToken:  w.Header().Get(middleware.HeaderAccessToken),
		refreshToken: w.Header().Get(middleware.HeaderRefreshToken),
	}
}

func (a authedUser) accessHeaders() map[string]string {
	return map[string]string{middleware.HeaderAccessToken: a.accessToken}
}

func (a authedUser) refreshHeaders() map[string]string {
	return map[string]string{
		middleware.HeaderRefreshToken: a.refreshToken,
		middleware.HeaderUserID:       a.id,
	}
}
