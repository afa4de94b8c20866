package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lukewarren/accountd/internal/auth"
	"github.com/lukewarren/accountd/internal/models"
	"github.com/lukewarren/accountd/internal/tracking"
	"github.com/lukewarren/accountd/pkg/crypto"
	apperrors "github.com/lukewarren/accountd/pkg/errors"
	"github.com/lukewarren/accountd/pkg/logger"
	"github.com/lukewarren/accountd/pkg/mail"
	"github.com/lukewarren/accountd/pkg/metrics"
)

// Client-facing errors surfaced by the account flows. Email lookups use 400
// rather than 404 to keep the enumeration signal low; lookups by id use 404.
var (
	ErrUserNotFound            = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusBadRequest)
	ErrUserNotFoundByID        = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	ErrEmailTaken              = apperrors.New("EMAIL_TAKEN", "User already exists", http.StatusBadRequest)
	ErrUsernameTaken           = apperrors.New("USERNAME_TAKEN", "Username already exists", http.StatusBadRequest)
	ErrInvalidVerificationCode = apperrors.New("CODE_INVALID", "Invalid verification code", http.StatusBadRequest)
	ErrVerificationCodeExpired = apperrors.New("CODE_EXPIRED", "Verification code expired", http.StatusBadRequest)
	ErrEmailNotVerified        = apperrors.New("EMAIL_NOT_VERIFIED", "Please verify your email", http.StatusBadRequest)
	ErrInvalidPassword         = apperrors.New("INVALID_PASSWORD", "Invalid password", http.StatusBadRequest)
	ErrInvalidEmailOrResetCode = apperrors.New("RESET_INVALID", "Invalid email or reset code", http.StatusBadRequest)
	ErrInvalidResetCode        = apperrors.New("RESET_CODE_INVALID", "Invalid reset code", http.StatusBadRequest)
	ErrResetCodeExpired        = apperrors.New("RESET_CODE_EXPIRED", "Reset code has expired", http.StatusBadRequest)
	ErrVerificationSendFailed  = apperrors.New("EMAIL_SEND_FAILED", "Failed to send verification email", http.StatusInternalServerError)
	ErrResetSendFailed         = apperrors.New("EMAIL_SEND_FAILED", "Failed to send reset email", http.StatusInternalServerError)
	ErrPasswordTooShort        = apperrors.NewBadRequest("Password must be at least 8 characters long")
)

const minPasswordLength = 8

// RegisterInput describes the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// UpdateUserInput enumerates the mutable profile attributes.
type UpdateUserInput struct {
	Name     *string
	Username *string
	Email    *string
}

// UserService sequences the account use cases over the code engine, token
// issuer, mailer, activity recorder, and the user store.
type UserService struct {
	db       *gorm.DB
	codes    *auth.CodeService
	tokens   *auth.TokenService
	mailer   mail.Mailer
	activity *ActivityService
	log      *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, codes *auth.CodeService, tokens *auth.TokenService, mailer mail.Mailer, activity *ActivityService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if codes == nil {
		return nil, errors.New("user service: code service is required")
	}
	if tokens == nil {
		return nil, errors.New("user service: token service is required")
	}
	return &UserService{
		db:       db,
		codes:    codes,
		tokens:   tokens,
		mailer:   mailer,
		activity: activity,
		log:      logger.WithModule("users"),
	}, nil
}

// TokenTTL exposes the session token lifetime for cookie transport.
func (s *UserService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Register creates an inactive account with a fresh verification code and
// attempts to deliver it by email. A failed send is logged but does not fail
// the registration; the account is already committed and the code can be
// resent.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, username); err != nil {
		return nil, err
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(input.Name),
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     models.RoleUser,
		Status:   models.StatusInactive,
	}

	code, err := s.codes.IssueVerificationCode(user)
	if err != nil {
		return nil, fmt.Errorf("user service: issue verification code: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	if err := s.sendCode(ctx, user, "Verification Code", code); err != nil {
		s.log.Error("failed to send verification email",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	return user, nil
}

// SendVerification (re)issues a verification code and emails it. Unlike
// registration, the caller is told when delivery fails.
func (s *UserService) SendVerification(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.codes.IssueVerificationCode(user)
	if err != nil {
		return fmt.Errorf("user service: issue verification code: %w", err)
	}
	if err := s.saveCodeFields(ctx, user); err != nil {
		return err
	}

	if err := s.sendCode(ctx, user, "Verification Code", code); err != nil {
		s.log.Error("failed to send verification email", zap.String("user_id", user.ID), zap.Error(err))
		return ErrVerificationSendFailed
	}
	return nil
}

// VerifyEmail consumes a verification code and activates the account.
func (s *UserService) VerifyEmail(ctx context.Context, email, code string) error {
	ctx = ensureContext(ctx)

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	switch s.codes.ValidateVerificationCode(user, code) {
	case auth.CodeValid:
	case auth.CodeExpired:
		return ErrVerificationCodeExpired
	default:
		return ErrInvalidVerificationCode
	}

	user.Status = models.StatusActive
	s.codes.ConsumeVerificationCode(user)

	updates := map[string]any{
		"status":                       user.Status,
		"verification_code":            nil,
		"verification_code_expires_at": nil,
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("user service: activate user: %w", err)
	}
	return nil
}

// Login checks credentials in a fixed order — existence, status, password —
// then stamps the last login, issues a session token, and records activity.
func (s *UserService) Login(ctx context.Context, email, password string, headers tracking.HeaderSource) (*models.User, string, error) {
	ctx = ensureContext(ctx)

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", err
	}

	if user.Status == models.StatusInactive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrEmailNotVerified
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidPassword
	}

	now := nowFunc()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, "", fmt.Errorf("user service: stamp last login: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("user service: issue token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.recordActivity(ctx, user.ID, "login", "User logged in", headers)

	return user, token, nil
}

// RequestPasswordReset issues a reset code and emails it. A missing account
// is not an error: callers respond identically either way so the endpoint
// cannot be used to enumerate accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string, headers tracking.HeaderSource) error {
	ctx = ensureContext(ctx)

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	code, err := s.codes.IssueResetCode(user)
	if err != nil {
		return fmt.Errorf("user service: issue reset code: %w", err)
	}
	if err := s.saveCodeFields(ctx, user); err != nil {
		return err
	}

	if err := s.sendCode(ctx, user, "Password Reset Code", code); err != nil {
		s.log.Error("failed to send reset email", zap.String("user_id", user.ID), zap.Error(err))
		return ErrResetSendFailed
	}

	s.recordActivity(ctx, user.ID, "password_reset_request", "Password reset requested", headers)
	return nil
}

// VerifyResetCode checks the reset code without consuming it. The code stays
// valid until ResetPassword re-checks and consumes it.
func (s *UserService) VerifyResetCode(ctx context.Context, email, code string) error {
	ctx = ensureContext(ctx)

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidEmailOrResetCode
		}
		return err
	}

	switch s.codes.ValidateResetCode(user, code) {
	case auth.CodeValid:
		return nil
	case auth.CodeExpired:
		return ErrResetCodeExpired
	default:
		return ErrInvalidResetCode
	}
}

// ResetPassword re-validates the reset code, sets the new credential, and
// consumes the code in one store write.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string, headers tracking.HeaderSource) error {
	ctx = ensureContext(ctx)

	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidEmailOrResetCode
		}
		return err
	}

	switch s.codes.ValidateResetCode(user, code) {
	case auth.CodeValid:
	case auth.CodeExpired:
		return ErrResetCodeExpired
	default:
		return ErrInvalidResetCode
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}

	s.codes.ConsumeResetCode(user)
	updates := map[string]any{
		"password":              hashed,
		"reset_code":            nil,
		"reset_code_expires_at": nil,
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("user service: reset password: %w", err)
	}

	s.recordActivity(ctx, user.ID, "password reset", "Password reset successfully", headers)
	return nil
}

// GetByID loads a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFoundByID
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// List returns every user. The acting user's role is re-fetched from the
// store rather than trusted from the token payload.
func (s *UserService) List(ctx context.Context, actorID string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// Update mutates profile fields on a user.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Username != nil {
		updates["username"] = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("username or email already exists")
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}
	return user, nil
}

// UpdatePassword changes the actor's own credential after re-checking the
// old one.
func (s *UserService) UpdatePassword(ctx context.Context, actorID, oldPassword, newPassword string, headers tracking.HeaderSource) error {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	if !crypto.VerifyPassword(user.Password, oldPassword) {
		return ErrInvalidPassword
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("user service: update password: %w", err)
	}

	s.recordActivity(ctx, user.ID, "password update", "Password updated successfully", headers)
	return nil
}

// UpdateStatus toggles a user between active and inactive.
func (s *UserService) UpdateStatus(ctx context.Context, id, status string) (*models.User, error) {
	ctx = ensureContext(ctx)

	if status != models.StatusActive && status != models.StatusInactive {
		return nil, apperrors.NewBadRequest("status must be active or inactive")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("user service: update status: %w", err)
	}
	user.Status = status
	return user, nil
}

// Delete removes a user. The acting user must hold the admin role, verified
// against the store at call time.
func (s *UserService) Delete(ctx context.Context, actorID, id string, headers tracking.HeaderSource) error {
	ctx = ensureContext(ctx)

	actor, err := s.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(user).Error; err != nil {
		return fmt.Errorf("user service: delete user: %w", err)
	}

	s.recordActivity(ctx, user.ID, "delete user",
		fmt.Sprintf("User deleted successfully by %s (%s)", actor.Name, actor.Email), headers)
	return nil
}

// EnsureAdmin creates an active admin account at bootstrap when none exists
// for the given email. Existing accounts are left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, name, username, email, password string) error {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("user service: admin email and password are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("user service: check admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}

	admin := &models.User{
		Name:     name,
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("user service: create admin: %w", err)
	}

	s.log.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

// requireAdmin re-fetches the actor and checks the stored role.
func (s *UserService) requireAdmin(ctx context.Context, actorID string) error {
	actor, err := s.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *UserService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find by email: %w", err)
	}
	return &user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("user service: check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("user service: check username: %w", err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return nil
}

// saveCodeFields persists the code columns set by the code engine.
func (s *UserService) saveCodeFields(ctx context.Context, user *models.User) error {
	updates := map[string]any{
		"verification_code":            user.VerificationCode,
		"verification_code_expires_at": user.VerificationCodeExpiresAt,
		"reset_code":                   user.ResetCode,
		"reset_code_expires_at":        user.ResetCodeExpiresAt,
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("user service: save code fields: %w", err)
	}
	return nil
}

func (s *UserService) sendCode(ctx context.Context, user *models.User, subject string, code int) error {
	if s.mailer == nil {
		return nil
	}

	kind := "verification"
	if strings.Contains(strings.ToLower(subject), "reset") {
		kind = "reset"
	}

	msg := mail.CodeEmail(user.Email, subject, user.Username, code)
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "failure").Inc()
		return err
	}
	metrics.EmailsSent.WithLabelValues(kind, "success").Inc()
	return nil
}

func (s *UserService) recordActivity(ctx context.Context, userID, action, description string, headers tracking.HeaderSource) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, userID, action, description, headers)
}
