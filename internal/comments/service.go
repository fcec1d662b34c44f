package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates the comment does not exist under the given location.
	ErrNotFound = errors.New("comments: not found")
	// ErrNotOwner indicates a mutation attempt by someone other than the author.
	ErrNotOwner = errors.New("comments: not the author")
	// ErrEmptyBody indicates a create or update with no usable text.
	ErrEmptyBody = errors.New("comments: empty body")

	noOpLogger = zap.NewNop()
)

// Author identifies who is acting on a comment.
type Author struct {
	ID   string
	Name string
}

// IDProvider issues comment identifiers.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies for the comment service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service owns comment CRUD and enforces author-only mutation.
type Service struct {
	db         *gorm.DB
	now        func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

// NewService constructs the comment service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("comments: database connection required")
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("comments: id provider required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, now: clock, idProvider: cfg.IDProvider, logger: logger}, nil
}

// List returns a location's comments in creation order.
func (s *Service) List(ctx context.Context, locationID string) ([]Comment, error) {
	var records []Comment
	err := s.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Create appends a comment authored by the caller.
func (s *Service) Create(ctx context.Context, locationID, body string, author Author) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, ErrEmptyBody
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		return Comment{}, err
	}

	now := s.now()
	record := Comment{
		ID:         id,
		LocationID: locationID,
		Body:       body,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return Comment{}, err
	}
	s.logger.Debug("comment created",
		zap.String("location_id", locationID),
		zap.String("comment_id", record.ID))
	return record, nil
}

// Update replaces a comment's body. Only the author may update.
func (s *Service) Update(ctx context.Context, locationID, commentID, body, callerID string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, ErrEmptyBody
	}

	record, err := s.find(ctx, locationID, commentID)
	if err != nil {
		return Comment{}, err
	}
	if record.AuthorID != callerID {
		return Comment{}, ErrNotOwner
	}

	record.Body = body
	record.UpdatedAt = s.now()
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return Comment{}, err
	}
	return record, nil
}

// Delete removes a comment. Only the author may delete.
func (s *Service) Delete(ctx context.Context, locationID, commentID, callerID string) error {
	record, err := s.find(ctx, locationID, commentID)
	if err != nil {
		return err
	}
	if record.AuthorID != callerID {
		return ErrNotOwner
	}
	return s.db.WithContext(ctx).Delete(&Comment{}, "id = ?", record.ID).Error
}

func (s *Service) find(ctx context.Context, locationID, commentID string) (Comment, error) {
	var record Comment
	err := s.db.WithContext(ctx).
		Where("id = ? AND location_id = ?", commentID, locationID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, err
	}
	return record, nil
}
