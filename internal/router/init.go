package router

import (
	"github.com/taskmaster/taskmaster-api/internal/application"
	"github.com/taskmaster/taskmaster-api/internal/container"
	pginfra "github.com/taskmaster/taskmaster-api/internal/infrastructure/postgres"
	handlers "github.com/taskmaster/taskmaster-api/internal/interface/http"
	"github.com/taskmaster/taskmaster-api/internal/router/modules"
)

// InitModules builds repositories, services and handlers from the container
// singletons and registers every feature module with the registry. Called
// once during startup.
func InitModules(r *Registry) {
	pool := container.GetPGPool()
	logger := container.GetLogger()
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(pool)
	projectRepo := pginfra.NewProjectRepository(pool)
	taskRepo := pginfra.NewTaskRepository(pool)

	auth := application.NewService(userRepo, container.GetJWT(), cfg.RefreshTTL, logger)

	userHandler := handlers.NewUserHandler(auth, logger)
	projectHandler := handlers.NewProjectHandler(projectRepo, logger)
	taskHandler := handlers.NewTaskHandler(projectRepo, taskRepo, logger)

	r.Add(modules.NewUserModule(userHandler, auth))
	r.Add(modules.NewProjectModule(projectHandler, taskHandler, container.GetJWT()))
}
