package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lukewarren/accountd/internal/auth"
	"github.com/lukewarren/accountd/internal/services"
	"github.com/lukewarren/accountd/pkg/response"
)

// AuthHandler serves the unauthenticated account lifecycle routes.
type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) (*AuthHandler, error) {
	if users == nil {
		return nil, errors.New("handlers: user service must be provided")
	}
	return &AuthHandler{users: users}, nil
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// POST /api/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if !bindAndValidate(c, &body) {
		return
	}

	_, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Name:     body.Name,
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Verification email sent")
}

// POST /api/users/send-verification (also mounted as /resend-verification)
func (h *AuthHandler) SendVerification(c *gin.Context) {
	var body emailRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.users.SendVerification(c.Request.Context(), body.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Verification email sent")
}

// POST /api/users/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var body verifyRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.users.VerifyEmail(c.Request.Context(), body.Email, body.Code); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Email verified successfully")
}

// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	_, token, err := h.users.Login(c.Request.Context(), body.Email, body.Password, c.Request.Header)
	if err != nil {
		response.Error(c, err)
		return
	}

	auth.SetSessionCookie(c, token, h.users.TokenTTL())
	response.Message(c, http.StatusOK, "Logged in successfully")
}

// POST /api/users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c)
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// POST /api/users/request-password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var body emailRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.users.RequestPasswordReset(c.Request.Context(), body.Email, c.Request.Header); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "If an account with this email exists, a reset code has been sent")
}

// POST /api/users/verify-reset-code
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var body verifyRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.users.VerifyResetCode(c.Request.Context(), body.Email, body.Code); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Reset code verified successfully")
}

// POST /api/users/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var body resetPasswordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	err := h.users.ResetPassword(c.Request.Context(), body.Email, body.Code, body.NewPassword, c.Request.Header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Password reset successfully")
}
