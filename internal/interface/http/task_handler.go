package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
	"github.com/taskmaster/taskmaster-api/internal/domain/repository"
	"github.com/taskmaster/taskmaster-api/internal/interface/middleware"
	"github.com/taskmaster/taskmaster-api/pkg/response"
	"github.com/taskmaster/taskmaster-api/pkg/validation"
)

// TaskHandler serves task CRUD nested under a project. Every route first
// verifies the caller owns the parent project and answers 404 otherwise, so
// tasks are never exposed across tenants.
type TaskHandler struct {
	Projects repository.ProjectRepository
	Tasks    repository.TaskRepository
	Logger   *logrus.Logger
}

func NewTaskHandler(projects repository.ProjectRepository, tasks repository.TaskRepository, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Projects: projects, Tasks: tasks, Logger: logger}
}

type createTaskRequest struct {
	Title string `json:"title" binding:"required,min=1"`
}

type patchTaskRequest struct {
	Title     *string `json:"title" binding:"omitempty,min=1"`
	Completed *bool   `json:"completed"`
}

// ownedProject resolves the parent project for the caller, writing a 404 and
// returning false when it does not exist or belongs to someone else.
func (h *TaskHandler) ownedProject(c *gin.Context, projectID string) bool {
	userID := c.GetString(middleware.CtxUserIDKey)
	_, err := h.Projects.GetByID(c.Request.Context(), projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "project not found", nil)
		} else {
			response.Fail(c, http.StatusBadRequest, "could not load project", err.Error())
		}
		return false
	}
	return true
}

// List handles GET /project/:id/task.
func (h *TaskHandler) List(c *gin.Context) {
	projectID := c.Param("id")
	if !h.ownedProject(c, projectID) {
		return
	}
	tasks, err := h.Tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.Logger.WithError(err).WithField("project_id", projectID).Error("list tasks failed")
		response.Fail(c, http.StatusBadRequest, "could not list tasks", err.Error())
		return
	}
	response.OK(c, http.StatusOK, tasks, "tasks")
}

// Create handles POST /project/:id/task.
func (h *TaskHandler) Create(c *gin.Context) {
	projectID := c.Param("id")
	if !h.ownedProject(c, projectID) {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t := &entity.Task{
		Title:     req.Title,
		ProjectID: projectID,
	}
	if err := h.Tasks.Create(c.Request.Context(), t); err != nil {
		h.Logger.WithError(err).WithField("project_id", projectID).Error("create task failed")
		response.Fail(c, http.StatusBadRequest, "could not create task", err.Error())
		return
	}
	response.OK(c, http.StatusOK, t, "task created")
}

// Patch handles PATCH /project/:id/task/:taskId. Writable fields are title and
// completed; the parent project reference is immutable.
func (h *TaskHandler) Patch(c *gin.Context) {
	projectID := c.Param("id")
	if !h.ownedProject(c, projectID) {
		return
	}
	var req patchTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Tasks.Update(c.Request.Context(), c.Param("taskId"), projectID, repository.TaskPatch{
		Title:     req.Title,
		Completed: req.Completed,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "task not found", nil)
			return
		}
		response.Fail(c, http.StatusBadRequest, "could not update task", err.Error())
		return
	}
	response.OK(c, http.StatusOK, t, "updated successfully")
}

// Delete handles DELETE /project/:id/task/:taskId.
func (h *TaskHandler) Delete(c *gin.Context) {
	projectID := c.Param("id")
	if !h.ownedProject(c, projectID) {
		return
	}
	t, err := h.Tasks.Delete(c.Request.Context(), c.Param("taskId"), projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "task not found", nil)
			return
		}
		response.Fail(c, http.StatusBadRequest, "could not delete task", err.Error())
		return
	}
	response.OK(c, http.StatusOK, t, "task deleted")
}
