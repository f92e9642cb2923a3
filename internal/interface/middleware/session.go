package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskmaster/taskmaster-api/internal/application"
	"github.com/taskmaster/taskmaster-api/pkg/response"
)

// VerifySession is the refresh guard: it resolves the user named by the _id
// header and requires a live session matching x-refresh-token. One storage
// read per request, so it fronts only the token re-issuance and logout
// endpoints.
func VerifySession(auth *application.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken := c.GetHeader(HeaderRefreshToken)
		userID := c.GetHeader(HeaderUserID)
		if refreshToken == "" || userID == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing refresh token or user id", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		u, err := auth.FindUserBySessionToken(c.Request.Context(), userID)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized,
				"user not found. make sure that the refresh token and user id are correct", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		if !auth.IsSessionValid(u, refreshToken) {
			resp := response.Error[any](c, http.StatusUnauthorized,
				"refresh token has expired or the session is invalid", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Set(CtxRefreshTokenKey, refreshToken)
		c.Next()
	}
}
