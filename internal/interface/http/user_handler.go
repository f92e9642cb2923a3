package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskmaster/taskmaster-api/internal/application"
	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
	"github.com/taskmaster/taskmaster-api/internal/domain/repository"
	"github.com/taskmaster/taskmaster-api/internal/interface/middleware"
	"github.com/taskmaster/taskmaster-api/pkg/response"
	"github.com/taskmaster/taskmaster-api/pkg/validation"
)

// UserHandler serves signup, login, token refresh, logout and profile.
// Token pairs always travel via the x-access-token / x-refresh-token
// response headers; bodies carry the user (never the password hash).
type UserHandler struct {
	Auth   *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(auth *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Auth: auth, Logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func setTokenHeaders(c *gin.Context, pair application.TokenPair) {
	c.Header(middleware.HeaderAccessToken, pair.AccessToken)
	c.Header(middleware.HeaderRefreshToken, pair.RefreshToken)
}

// Signup handles POST /users.
func (h *UserHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusBadRequest, "email already in use", nil)
			return
		}
		h.Logger.WithError(err).Error("signup failed")
		response.Fail(c, http.StatusBadRequest, "signup failed", err.Error())
		return
	}

	h.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user signed up")
	setTokenHeaders(c, pair)
	response.OK(c, http.StatusOK, u, "user created")
}

// Login handles POST /users/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Fail(c, http.StatusBadRequest, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Fail(c, http.StatusBadRequest, "login failed", err.Error())
		return
	}

	h.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user logged in")
	setTokenHeaders(c, pair)
	response.OK(c, http.StatusOK, u, "logged in")
}

// AccessToken handles GET /users/me/access-token (refresh guard). It mints a
// fresh access token for the session the guard already validated.
func (h *UserHandler) AccessToken(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	access, _, err := h.Auth.JWT.GenerateAccessToken(userID)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", userID).Error("access token issuance failed")
		response.Fail(c, http.StatusBadRequest, "could not issue access token", err.Error())
		return
	}
	c.Header(middleware.HeaderAccessToken, access)
	response.OK(c, http.StatusOK, gin.H{"accessToken": access}, "access token issued")
}

// Logout handles POST /users/logout (refresh guard). It revokes the presented
// session; other sessions of the same user stay valid.
func (h *UserHandler) Logout(c *gin.Context) {
	u, ok := c.MustGet(middleware.CtxUserKey).(*entity.User)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	token := c.GetString(middleware.CtxRefreshTokenKey)
	if err := h.Auth.RevokeSession(c.Request.Context(), u, token); err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("logout failed")
		response.Fail(c, http.StatusBadRequest, "logout failed", err.Error())
		return
	}
	h.Logger.WithField("user_id", u.ID).Info("session revoked")
	response.OK[any](c, http.StatusOK, nil, "logged out")
}

// Me handles GET /user (access guard).
func (h *UserHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Auth.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "could not load user", err.Error())
		return
	}
	response.OK(c, http.StatusOK, u, "user")
}
