package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/lukewarren/accountd/internal/models"
)

// Lifetime windows for one-time codes, measured from generation time.
const (
	VerificationCodeTTL = 10 * time.Minute
	ResetCodeTTL        = 15 * time.Minute
)

const (
	codeMin  = 100000
	codeSpan = 900000
)

// CodeStatus is the outcome of validating a one-time code.
type CodeStatus int

const (
	CodeValid CodeStatus = iota
	// CodeNotFound means no code is stored on the record.
	CodeNotFound
	// CodeMismatch means a code is stored but differs from the supplied value.
	CodeMismatch
	// CodeExpired means the supplied code matches but its window has passed.
	CodeExpired
)

func (s CodeStatus) String() string {
	switch s {
	case CodeValid:
		return "valid"
	case CodeNotFound:
		return "not_found"
	case CodeMismatch:
		return "mismatch"
	case CodeExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// CodeOption customises a CodeService.
type CodeOption func(*CodeService)

// WithCodeClock injects a custom time source.
func WithCodeClock(clock func() time.Time) CodeOption {
	return func(s *CodeService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// CodeService generates and validates short-lived 6-digit one-time codes for
// email verification and password reset. It mutates the passed-in user record
// only; persistence is the caller's responsibility. Expired codes are checked
// lazily at validation time, never actively swept.
type CodeService struct {
	now func() time.Time
}

// NewCodeService constructs a CodeService.
func NewCodeService(opts ...CodeOption) *CodeService {
	s := &CodeService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateCode returns a uniformly random integer in [100000, 999999].
func GenerateCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return 0, fmt.Errorf("code: generate: %w", err)
	}
	return codeMin + int(n.Int64()), nil
}

// IssueVerificationCode sets a fresh verification code and expiry on the user.
func (s *CodeService) IssueVerificationCode(u *models.User) (int, error) {
	code, err := GenerateCode()
	if err != nil {
		return 0, err
	}

	value := strconv.Itoa(code)
	expiresAt := s.now().Add(VerificationCodeTTL)
	u.VerificationCode = &value
	u.VerificationCodeExpiresAt = &expiresAt
	return code, nil
}

// IssueResetCode sets a fresh password-reset code and expiry on the user.
func (s *CodeService) IssueResetCode(u *models.User) (int, error) {
	code, err := GenerateCode()
	if err != nil {
		return 0, err
	}

	value := strconv.Itoa(code)
	expiresAt := s.now().Add(ResetCodeTTL)
	u.ResetCode = &value
	u.ResetCodeExpiresAt = &expiresAt
	return code, nil
}

// ValidateCode checks a supplied code against the stored code and expiry.
// Mismatch is reported before expiry so a wrong code and an expired code stay
// distinguishable outcomes.
func (s *CodeService) ValidateCode(stored *string, expiresAt *time.Time, supplied string) CodeStatus {
	if stored == nil || *stored == "" {
		return CodeNotFound
	}
	if *stored != supplied {
		return CodeMismatch
	}
	if expiresAt == nil || s.now().After(*expiresAt) {
		return CodeExpired
	}
	return CodeValid
}

// ValidateVerificationCode validates the user's stored verification code.
func (s *CodeService) ValidateVerificationCode(u *models.User, supplied string) CodeStatus {
	return s.ValidateCode(u.VerificationCode, u.VerificationCodeExpiresAt, supplied)
}

// ValidateResetCode validates the user's stored reset code.
func (s *CodeService) ValidateResetCode(u *models.User, supplied string) CodeStatus {
	return s.ValidateCode(u.ResetCode, u.ResetCodeExpiresAt, supplied)
}

// ConsumeVerificationCode nulls the verification code and its expiry together.
func (s *CodeService) ConsumeVerificationCode(u *models.User) {
	u.VerificationCode = nil
	u.VerificationCodeExpiresAt = nil
}

// ConsumeResetCode nulls the reset code and its expiry together.
func (s *CodeService) ConsumeResetCode(u *models.User) {
	u.ResetCode = nil
	u.ResetCodeExpiresAt = nil
}
