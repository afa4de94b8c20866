package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/lukewarren/accountd/internal/app"
	iauth "github.com/lukewarren/accountd/internal/auth"
	"github.com/lukewarren/accountd/internal/handlers"
	"github.com/lukewarren/accountd/internal/middleware"
	"github.com/lukewarren/accountd/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the account
// routes under the configured base path.
func NewRouter(db *gorm.DB, cfg *app.Config, tokens *iauth.TokenService, users *services.UserService, activity *services.ActivityService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}
	if users == nil {
		return nil, fmt.Errorf("user service must be provided")
	}
	if activity == nil {
		return nil, fmt.Errorf("activity service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORSOrigin))

	// Liveness and readiness (public)
	r.GET("/", handlers.Root())
	r.GET("/health", handlers.Health(db))

	authHandler, err := handlers.NewAuthHandler(users)
	if err != nil {
		return nil, err
	}
	userHandler, err := handlers.NewUserHandler(users)
	if err != nil {
		return nil, err
	}
	activityHandler, err := handlers.NewActivityHandler(activity)
	if err != nil {
		return nil, err
	}

	basePath := cfg.Server.BasePath
	if basePath == "" {
		basePath = "/api/users"
	}
	base := r.Group(basePath)

	// Public account lifecycle routes
	base.POST("/register", authHandler.Register)
	base.POST("/send-verification", authHandler.SendVerification)
	base.POST("/resend-verification", authHandler.SendVerification)
	base.POST("/verify", authHandler.Verify)
	base.POST("/login", authHandler.Login)
	base.POST("/logout", authHandler.Logout)
	base.POST("/request-password-reset", authHandler.RequestPasswordReset)
	base.POST("/verify-reset-code", authHandler.VerifyResetCode)
	base.POST("/reset-password", authHandler.ResetPassword)

	// Session-gated routes
	requireAuth := middleware.Auth(tokens, users)
	session := base.Group("", requireAuth)

	session.GET("/all", middleware.RequireAdmin(), userHandler.List)
	session.GET("/activity", activityHandler.List)
	session.PUT("/update-user/:id", userHandler.Update)
	session.PATCH("/update-password/:id", userHandler.UpdatePassword)
	session.GET("/:id", userHandler.Get)
	session.PATCH("/:id/status", userHandler.UpdateStatus)
	session.DELETE("/:id", middleware.RequireAdmin(), userHandler.Delete)

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
