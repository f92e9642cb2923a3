package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskmaster/taskmaster-api/internal/application"
	"github.com/taskmaster/taskmaster-api/internal/container"
	handlers "github.com/taskmaster/taskmaster-api/internal/interface/http"
	"github.com/taskmaster/taskmaster-api/internal/interface/middleware"
)

// UserModule wires the auth surface.
// Public: POST /users (signup), POST /users/login
// Refresh guard: GET /users/me/access-token, POST /users/logout
// Access guard: GET /user
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    *application.Service
}

func NewUserModule(h *handlers.UserHandler, auth *application.Service) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Credential endpoints take the brunt of abuse; rate limit per IP.
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/users", signupLimiter, m.Handler.Signup)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)

	// Session-backed endpoints: one storage read per request, reserved for
	// token re-issuance and logout.
	session := rg.Group("/")
	session.Use(middleware.VerifySession(m.Auth))
	{
		session.GET("/users/me/access-token", m.Handler.AccessToken)
		session.POST("/users/logout", m.Handler.Logout)
	}

	// Stateless access guard for the profile read.
	auth := rg.Group("/")
	auth.Use(middleware.Authenticate(m.Auth.JWT))
	{
		auth.GET("/user", m.Handler.Me)
	}
}
