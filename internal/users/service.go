package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/placeboard/placeboard/internal/auth"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken indicates a registration attempt with an email already on file.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so the
	// two cases are indistinguishable to callers.
	ErrInvalidCredentials = errors.New("users: invalid email or password")
	// ErrInvalidInput indicates missing or malformed registration fields.
	ErrInvalidInput = errors.New("users: invalid input")
)

// ServiceConfig describes the dependencies required for account management.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
}

// Service manages account registration and password authentication.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs the account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: cfg.Database, now: clock}, nil
}

// Register creates an account and returns its public profile.
func (s *Service) Register(ctx context.Context, name, email, password string) (Profile, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return Profile{}, ErrInvalidInput
	}
	if err := auth.ValidatePassword(password); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var existing User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return Profile{}, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Profile{}, err
	}

	account := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return Profile{}, err
	}
	return account.Profile(), nil
}

// Authenticate verifies the email/password pair and returns the matching profile.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Profile, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Profile{}, ErrInvalidCredentials
	}

	var account User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return Profile{}, err
	}
	if !auth.CheckPassword(account.PasswordHash, password) {
		return Profile{}, ErrInvalidCredentials
	}
	return account.Profile(), nil
}

// GetProfile returns the public profile for a user id.
func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var account User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return Profile{}, err
	}
	return account.Profile(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
