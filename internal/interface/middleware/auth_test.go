package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/taskmaster-api/internal/application"
	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
	"github.com/taskmaster/taskmaster-api/internal/domain/repository"
	"github.com/taskmaster/taskmaster-api/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// userRepoStub serves a single fixed user for refresh-guard tests.
type userRepoStub struct {
	user *entity.User
}

func (s *userRepoStub) Create(context.Context, *entity.User) error { return nil }

func (s *userRepoStub) GetByID(_ context.Context, id string) (*entity.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, repository.ErrNotFound
}

func (s *userRepoStub) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}

func (s *userRepoStub) UpdateSessions(context.Context, string, []entity.Session) error { return nil }

var _ repository.UserRepository = (*userRepoStub)(nil)

func accessGuardRouter(jwt *helpers.JWTManager) *gin.Engine {
	r := gin.New()
	r.GET("/protected", Authenticate(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(CtxUserIDKey)})
	})
	return r
}

func TestAuthenticate_MissingToken(t *testing.T) {
	t.Parallel()

	r := accessGuardRouter(&helpers.JWTManager{Secret: []byte("secret"), AccessTTL: time.Hour})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	t.Parallel()

	r := accessGuardRouter(&helpers.JWTManager{Secret: []byte("secret"), AccessTTL: time.Hour})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(HeaderAccessToken, "garbage")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "invalid access token")
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	t.Parallel()

	expired := &helpers.JWTManager{Secret: []byte("secret"), AccessTTL: -time.Minute}
	tok, _, err := expired.GenerateAccessToken("u1")
	require.NoError(t, err)

	r := accessGuardRouter(&helpers.JWTManager{Secret: []byte("secret"), AccessTTL: time.Hour})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(HeaderAccessToken, tok)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "expired")
}

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Parallel()

	jwt := &helpers.JWTManager{Secret: []byte("secret"), AccessTTL: time.Hour}
	tok, _, err := jwt.GenerateAccessToken("user-42")
	require.NoError(t, err)

	r := accessGuardRouter(jwt)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(HeaderAccessToken, tok)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "user-42")
}

func refreshGuardRouter(auth *application.Service) *gin.Engine {
	r := gin.New()
	r.GET("/refresh", VerifySession(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserIDKey),
			"token":   c.GetString(CtxRefreshTokenKey),
		})
	})
	return r
}

func TestVerifySession(t *testing.T) {
	t.Parallel()

	now := time.Now()
	stub := &userRepoStub{user: &entity.User{
		ID: "user-1",
		Sessions: []entity.Session{
			{Token: "stale", ExpiresAt: now.Add(-time.Hour).UnixMilli()},
			{Token: "fresh", ExpiresAt: now.Add(time.Hour).UnixMilli()},
		},
	}}
	auth := application.NewService(stub, &helpers.JWTManager{Secret: []byte("secret"), AccessTTL: time.Hour}, time.Hour, nil)
	r := refreshGuardRouter(auth)

	cases := []struct {
		name    string
		userID  string
		token   string
		status  int
		message string
	}{
		{"missing headers", "", "", http.StatusUnauthorized, "missing refresh token"},
		{"unknown user", "user-9", "fresh", http.StatusUnauthorized, "user not found"},
		{"wrong token", "user-1", "nope", http.StatusUnauthorized, "session is invalid"},
		{"expired token", "user-1", "stale", http.StatusUnauthorized, "session is invalid"},
		{"valid session", "user-1", "fresh", http.StatusOK, "user-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
			if tc.userID != "" {
				req.Header.Set(HeaderUserID, tc.userID)
			}
			if tc.token != "" {
				req.Header.Set(HeaderRefreshToken, tc.token)
			}
			r.ServeHTTP(w, req)

			require.Equal(t, tc.status, w.Code)
			require.Contains(t, w.Body.String(), tc.message)
		})
	}
}
