package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lukewarren/accountd/internal/services"
	"github.com/lukewarren/accountd/pkg/response"
)

// ActivityHandler serves the audit log routes.
type ActivityHandler struct {
	activity *services.ActivityService
}

func NewActivityHandler(activity *services.ActivityService) (*ActivityHandler, error) {
	if activity == nil {
		return nil, errors.New("handlers: activity service must be provided")
	}
	return &ActivityHandler{activity: activity}, nil
}

// GET /api/users/activity
func (h *ActivityHandler) List(c *gin.Context) {
	entries, err := h.activity.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Resource(c, http.StatusOK, entries)
}
