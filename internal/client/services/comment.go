package services

import (
	"context"
	"errors"
	"strings"

	"github.com/placeboard/placeboard/internal/client/api"
	"go.uber.org/zap"
)

// ErrEmptyComment indicates a create or edit with no usable text; no request
// is sent in that case.
var ErrEmptyComment = errors.New("comment text is empty")

// CommentService performs comment CRUD for a location. The list returned by
// List is the single source of truth: callers re-fetch after every mutation
// and never patch it locally.
type CommentService struct {
	client *api.Client
	logger *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(client *api.Client, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{client: client, logger: logger}
}

// List fetches the location's comments. Any failure degrades to an empty
// list: the error is logged, not surfaced, so the rest of the view stays up.
func (s *CommentService) List(ctx context.Context, locationID string) []api.Comment {
	records, err := s.client.ListComments(ctx, locationID)
	if err != nil {
		s.logger.Error("comment list failed",
			zap.String("location_id", locationID), zap.Error(err))
		return nil
	}
	return records
}

// Create posts a comment. Empty or whitespace-only text is rejected before
// any network I/O.
func (s *CommentService) Create(ctx context.Context, locationID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyComment
	}
	if _, err := s.client.CreateComment(ctx, locationID, text); err != nil {
		s.logger.Error("comment create failed",
			zap.String("location_id", locationID), zap.Error(err))
		return err
	}
	return nil
}

// Update replaces a comment's text. Ownership is enforced by the backend;
// the client only hides the affordance for comments it does not own.
func (s *CommentService) Update(ctx context.Context, locationID, commentID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyComment
	}
	if _, err := s.client.UpdateComment(ctx, locationID, commentID, text); err != nil {
		s.logger.Error("comment update failed",
			zap.String("location_id", locationID),
			zap.String("comment_id", commentID), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes a comment. The confirmation step happens in the UI before
// this call is made.
func (s *CommentService) Delete(ctx context.Context, locationID, commentID string) error {
	if err := s.client.DeleteComment(ctx, locationID, commentID); err != nil {
		s.logger.Error("comment delete failed",
			zap.String("location_id", locationID),
			zap.String("comment_id", commentID), zap.Error(err))
		return err
	}
	return nil
}
