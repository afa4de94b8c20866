package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lukewarren/accountd/pkg/response"
)

// Root returns the plain liveness message at the server root.
func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Message(c, http.StatusOK, "Server is running")
	}
}

// Health reports readiness, including a database ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		response.Resource(c, code, gin.H{"status": status})
	}
}
