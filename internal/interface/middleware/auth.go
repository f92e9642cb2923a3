package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskmaster/taskmaster-api/pkg/helpers"
	"github.com/taskmaster/taskmaster-api/pkg/response"
)

// Request headers carrying credentials. Fixed names, part of the API contract.
const (
	HeaderAccessToken  = "x-access-token"
	HeaderRefreshToken = "x-refresh-token"
	HeaderUserID       = "_id"
)

// Gin context keys set by the guards.
const (
	CtxUserIDKey       = "userID"
	CtxUserKey         = "user"
	CtxRefreshTokenKey = "refreshToken"
)

// Authenticate is the access guard: it verifies the JWT from x-access-token
// and injects the caller's user id into the context. Verification is purely
// cryptographic; this guard never touches storage.
func Authenticate(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderAccessToken)
		if token == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
