package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lukewarren/accountd/internal/auth"
	"github.com/lukewarren/accountd/internal/database/testutil"
	"github.com/lukewarren/accountd/internal/models"
	"github.com/lukewarren/accountd/internal/services"
	"github.com/lukewarren/accountd/internal/tracking"
	"github.com/lukewarren/accountd/pkg/response"
)

type authFixture struct {
	db     *gorm.DB
	tokens *auth.TokenService
	users  *services.UserService
	router *gin.Engine
}

func newAuthFixture(t *testing.T, adminRoute bool) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret"})
	require.NoError(t, err)

	activity, err := services.NewActivityService(db, tracking.NewTracker(nil))
	require.NoError(t, err)
	users, err := services.NewUserService(db, auth.NewCodeService(), tokens, nil, activity)
	require.NoError(t, err)

	r := gin.New()
	group := r.Group("/", Auth(tokens, users))
	if adminRoute {
		group.Use(RequireAdmin())
	}
	group.GET("/probe", func(c *gin.Context) {
		user := CurrentUser(c)
		response.Resource(c, http.StatusOK, gin.H{"id": user.ID})
	})

	return &authFixture{db: db, tokens: tokens, users: users, router: r}
}

func (f *authFixture) createUser(t *testing.T, status, role string) *models.User {
	t.Helper()

	user, err := f.users.Register(context.Background(), services.RegisterInput{
		Name: "Test", Username: "test-" + role + status, Email: role + status + "@example.com", Password: "pass-word-123",
	})
	require.NoError(t, err)

	if status == models.StatusActive {
		require.NoError(t, f.users.VerifyEmail(context.Background(), user.Email, *user.VerificationCode))
	}
	if role == models.RoleAdmin {
		// promote directly; there is no route for role changes
		require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", user.ID).Update("role", models.RoleAdmin).Error)
	}
	return user
}

func (f *authFixture) request(t *testing.T, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsMissingCookie(t *testing.T) {
	f := newAuthFixture(t, false)
	w := f.request(t, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Unauthorized - No token provided")
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	f := newAuthFixture(t, false)
	w := f.request(t, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Unauthorized - Invalid token")
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	f := newAuthFixture(t, false)

	token, err := f.tokens.Issue("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)

	w := f.request(t, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Unauthorized - User not found")
}

func TestAuthRejectsInactiveUser(t *testing.T) {
	f := newAuthFixture(t, false)
	user := f.createUser(t, models.StatusInactive, models.RoleUser)

	token, err := f.tokens.Issue(user.ID)
	require.NoError(t, err)

	w := f.request(t, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Account is inactive")
}

func TestAuthAcceptsActiveUser(t *testing.T) {
	f := newAuthFixture(t, false)
	user := f.createUser(t, models.StatusActive, models.RoleUser)

	token, err := f.tokens.Issue(user.ID)
	require.NoError(t, err)

	w := f.request(t, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), user.ID)
}

func TestRequireAdminBlocksRegularUser(t *testing.T) {
	f := newAuthFixture(t, true)
	user := f.createUser(t, models.StatusActive, models.RoleUser)

	token, err := f.tokens.Issue(user.ID)
	require.NoError(t, err)

	w := f.request(t, token)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "You are not authorized to access this resource")
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	f := newAuthFixture(t, true)
	user := f.createUser(t, models.StatusActive, models.RoleAdmin)

	token, err := f.tokens.Issue(user.ID)
	require.NoError(t, err)

	w := f.request(t, token)
	require.Equal(t, http.StatusOK, w.Code)
}
