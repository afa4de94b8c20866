package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lukewarren/accountd/internal/auth"
	"github.com/lukewarren/accountd/internal/models"
	"github.com/lukewarren/accountd/internal/services"
	apperrors "github.com/lukewarren/accountd/pkg/errors"
	"github.com/lukewarren/accountd/pkg/response"
)

const (
	CtxUserKey   = "authUser"
	CtxUserIDKey = "userID"
)

var (
	errNoToken      = apperrors.NewUnauthorized("Unauthorized - No token provided")
	errInvalidToken = apperrors.NewUnauthorized("Unauthorized - Invalid token")
	errUserGone     = apperrors.NewUnauthorized("Unauthorized - User not found")
	errInactive     = apperrors.NewUnauthorized("Account is inactive")
)

// Auth authenticates requests from the session cookie. The token only proves
// identity; role and status are read from the store on every request.
func Auth(tokens *auth.TokenService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.SessionTokenFromRequest(c.Request)
		if !ok {
			response.Error(c, errNoToken)
			c.Abort()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			response.Error(c, errInvalidToken)
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, errUserGone)
			c.Abort()
			return
		}

		if user.Status != models.StatusActive {
			response.Error(c, errInactive)
			c.Abort()
			return
		}

		c.Set(CtxUserKey, user)
		c.Set(CtxUserIDKey, user.ID)
		c.Next()
	}
}

// RequireAdmin gates a route on the authenticated user's stored role. It must
// run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Auth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
