package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lukewarren/accountd/internal/middleware"
	"github.com/lukewarren/accountd/internal/services"
	apperrors "github.com/lukewarren/accountd/pkg/errors"
	"github.com/lukewarren/accountd/pkg/response"
)

// UserHandler serves the authenticated user administration routes.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) (*UserHandler, error) {
	if users == nil {
		return nil, errors.New("handlers: user service must be provided")
	}
	return &UserHandler{users: users}, nil
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Username *string `json:"username" validate:"omitempty,min=3,max=20"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// GET /api/users/all
func (h *UserHandler) List(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	users, err := h.users.List(c.Request.Context(), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Resource(c, http.StatusOK, users)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Resource(c, http.StatusOK, user)
}

// PUT /api/users/update-user/:id
func (h *UserHandler) Update(c *gin.Context) {
	var body updateUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), services.UpdateUserInput{
		Name:     body.Name,
		Username: body.Username,
		Email:    body.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Resource(c, http.StatusOK, user)
}

// PATCH /api/users/update-password/:id
// The credential changed is always the session user's own; the path id is
// not trusted.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var body updatePasswordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	err := h.users.UpdatePassword(c.Request.Context(), actor.ID, body.OldPassword, body.NewPassword, c.Request.Header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Password updated successfully")
}

// PATCH /api/users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var body updateStatusRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Resource(c, http.StatusOK, user)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.users.Delete(c.Request.Context(), actor.ID, c.Param("id"), c.Request.Header); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "User deleted successfully")
}
