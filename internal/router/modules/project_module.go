package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/taskmaster/taskmaster-api/internal/interface/http"
	"github.com/taskmaster/taskmaster-api/internal/interface/middleware"
	"github.com/taskmaster/taskmaster-api/pkg/helpers"
)

// ProjectModule wires project and nested task routes, all behind the access
// guard. Task routes share the project's :id segment; ownership of the parent
// project is checked inside the task handler.
type ProjectModule struct {
	Projects *handlers.ProjectHandler
	Tasks    *handlers.TaskHandler
	JWT      *helpers.JWTManager
}

func NewProjectModule(projects *handlers.ProjectHandler, tasks *handlers.TaskHandler, jwt *helpers.JWTManager) *ProjectModule {
	return &ProjectModule{Projects: projects, Tasks: tasks, JWT: jwt}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Authenticate(m.JWT))
	{
		auth.GET("/project", m.Projects.List)
		auth.POST("/project", m.Projects.Create)
		auth.GET("/project/:id", m.Projects.Get)
		auth.PATCH("/project/:id", m.Projects.Patch)
		auth.DELETE("/project/:id", m.Projects.Delete)

		auth.GET("/project/:id/task", m.Tasks.List)
		auth.POST("/project/:id/task", m.Tasks.Create)
		auth.PATCH("/project/:id/task/:taskId", m.Tasks.Patch)
		auth.DELETE("/project/:id/task/:taskId", m.Tasks.Delete)
	}
}
