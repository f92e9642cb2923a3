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

// ProjectHandler is owner-scoped pass-through CRUD: every query carries the
// authenticated user id resolved by the access guard.
type ProjectHandler struct {
	Projects repository.ProjectRepository
	Logger   *logrus.Logger
}

func NewProjectHandler(projects repository.ProjectRepository, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Logger: logger}
}

type projectRequest struct {
	Title string `json:"title" binding:"required,min=1"`
}

// List handles GET /project.
func (h *ProjectHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	projects, err := h.Projects.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", userID).Error("list projects failed")
		response.Fail(c, http.StatusBadRequest, "could not list projects", err.Error())
		return
	}
	response.OK(c, http.StatusOK, projects, "projects")
}

// Create handles POST /project.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p := &entity.Project{
		Title:  req.Title,
		UserID: c.GetString(middleware.CtxUserIDKey),
	}
	if err := h.Projects.Create(c.Request.Context(), p); err != nil {
		h.Logger.WithError(err).WithField("user_id", p.UserID).Error("create project failed")
		response.Fail(c, http.StatusBadRequest, "could not create project", err.Error())
		return
	}
	response.OK(c, http.StatusOK, p, "project created")
}

// Get handles GET /project/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Projects.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "project not found", nil)
			return
		}
		response.Fail(c, http.StatusBadRequest, "could not load project", err.Error())
		return
	}
	response.OK(c, http.StatusOK, p, "project")
}

// Patch handles PATCH /project/:id. Only the title is writable; ownership
// fields are immutable.
func (h *ProjectHandler) Patch(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	userID := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Projects.UpdateTitle(c.Request.Context(), c.Param("id"), userID, req.Title)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "project not found", nil)
			return
		}
		response.Fail(c, http.StatusBadRequest, "could not update project", err.Error())
		return
	}
	response.OK(c, http.StatusOK, p, "updated successfully")
}

// Delete handles DELETE /project/:id. The project and its tasks go away in
// one transaction.
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Projects.DeleteWithTasks(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "project not found", nil)
			return
		}
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id":    userID,
			"project_id": c.Param("id"),
		}).Error("delete project failed")
		response.Fail(c, http.StatusBadRequest, "could not delete project", err.Error())
		return
	}
	h.Logger.WithField("project_id", p.ID).Info("project and tasks deleted")
	response.OK(c, http.StatusOK, p, "project deleted")
}
