package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/upfeed/upfeed/internal/monitoring"
	"github.com/upfeed/upfeed/internal/repository"
	"github.com/upfeed/upfeed/internal/utils"
	"github.com/upfeed/upfeed/internal/validation"
	"gorm.io/gorm"

	apierrors "github.com/upfeed/upfeed/internal/errors"
	"github.com/upfeed/upfeed/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// AuthService handles registration, login and the password-reset flow.
// Business-rule failures come back as field errors; the error return is
// reserved for infrastructure problems.
type AuthService struct {
	userRepo    repository.UserRepository
	tokenRepo   repository.ResetTokenRepository
	mailer      Mailer
	frontendURL string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.ResetTokenRepository, mailer Mailer, frontendURL string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		mailer:      mailer,
		frontendURL: frontendURL,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string `validate:"required,min=3,max=50,excludes=@"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Register validates input, hashes the password and inserts the user.
func (s *AuthService) Register(input RegisterInput) (*models.User, []apierrors.FieldError, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if fieldErrs := validation.Check(input); fieldErrs != nil {
		return nil, fieldErrs, nil
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateFieldError(input), nil
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil, nil
}

// duplicateFieldError names the colliding field. GORM's translated duplicate
// error drops the constraint detail, so the offender is determined with a
// follow-up lookup.
func (s *AuthService) duplicateFieldError(input RegisterInput) []apierrors.FieldError {
	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return apierrors.NewFieldError("email", "email already taken")
	}
	return apierrors.NewFieldError("username", "username already taken")
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	UsernameOrEmail string `validate:"required"`
	Password        string `validate:"required"`
}

// Login verifies credentials and returns the authenticated user. An "@" in the
// identity selects the email lookup.
func (s *AuthService) Login(input LoginInput) (*models.User, []apierrors.FieldError, error) {
	if fieldErrs := validation.Check(input); fieldErrs != nil {
		return nil, fieldErrs, nil
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(input.UsernameOrEmail, "@") {
		user, err = s.userRepo.FindByEmail(input.UsernameOrEmail)
	} else {
		user, err = s.userRepo.FindByUsername(input.UsernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewFieldError("usernameOrEmail", "that account doesn't exist"), nil
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apierrors.NewFieldError("password", "incorrect password"), nil
	}

	return user, nil, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ForgotPassword stores a reset token and mails the reset link. A missing
// email is treated as success so the endpoint gives no enumeration signal.
func (s *AuthService) ForgotPassword(email string) error {
	user, err := s.userRepo.FindByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token := uuid.NewString()
	if err := s.tokenRepo.Store(token, user.ID); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	s.mailer.SendPasswordResetEmail(user.Email, fmt.Sprintf("%s/change-password/%s", s.frontendURL, token))
	monitoring.PasswordResetsRequested.Inc()
	return nil
}

// ChangePasswordInput carries the reset token and the replacement password.
type ChangePasswordInput struct {
	Token       string
	NewPassword string `validate:"required,min=6"`
}

// ChangePassword consumes a reset token, updates the password hash and returns
// the user so the caller can establish a session.
func (s *AuthService) ChangePassword(input ChangePasswordInput) (*models.User, []apierrors.FieldError, error) {
	if fieldErrs := validation.Check(input); fieldErrs != nil {
		return nil, fieldErrs, nil
	}

	userID, ok, err := s.tokenRepo.Lookup(input.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up reset token: %w", err)
	}
	if !ok {
		return nil, apierrors.NewFieldError("token", "token expired"), nil
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewFieldError("token", "user no longer exists"), nil
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(user.ID, hash); err != nil {
		return nil, nil, fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordHash = hash

	// Consume the token so the reset link is single-use.
	if err := s.tokenRepo.Delete(input.Token); err != nil {
		return nil, nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	return user, nil, nil
}
