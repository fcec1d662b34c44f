package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const maxIdentifierLength = 190

var (
	// ErrNotFound indicates no record exists for the requested place id.
	ErrNotFound = errors.New("locations: not found")
	// ErrAlreadyExists indicates a create raced with or repeated an earlier create.
	ErrAlreadyExists = errors.New("locations: already exists")
	// ErrInvalidInput indicates a missing or oversized identifier or name.
	ErrInvalidInput = errors.New("locations: invalid input")
)

// ServiceConfig describes the dependencies for the location record service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
}

// Service stores location records keyed by their external place identifier.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs the location record service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("locations: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: cfg.Database, now: clock}, nil
}

// Get fetches a record by place id.
func (s *Service) Get(ctx context.Context, placeID string) (Location, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return Location{}, ErrInvalidInput
	}

	var record Location
	err := s.db.WithContext(ctx).Where("id = ?", placeID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Location{}, ErrNotFound
	}
	if err != nil {
		return Location{}, err
	}
	return record, nil
}

// Create inserts a record. A duplicate place id yields ErrAlreadyExists, never
// a second row; the primary key settles the two-clients-race case.
func (s *Service) Create(ctx context.Context, placeID, name, address string) (Location, error) {
	placeID = strings.TrimSpace(placeID)
	name = strings.TrimSpace(name)
	if placeID == "" || name == "" {
		return Location{}, ErrInvalidInput
	}
	if len(placeID) > maxIdentifierLength {
		return Location{}, fmt.Errorf("%w: place id exceeds %d characters", ErrInvalidInput, maxIdentifierLength)
	}

	record := Location{
		ID:        placeID,
		Name:      name,
		Address:   strings.TrimSpace(address),
		CreatedAt: s.now(),
	}
	err := s.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return Location{}, ErrAlreadyExists
		}
		return Location{}, err
	}
	return record, nil
}

// isUniqueViolation recognizes the sqlite constraint message gorm surfaces
// when the driver does not translate it to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") ||
		strings.Contains(message, "constraint failed")
}
