package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// CredentialSource supplies the bearer credential at call time. The session
// store implements it; every request is a pure function of the credential
// present when the call is made.
type CredentialSource interface {
	Token() string
}

// Client is the typed REST client for the placeboard backend. All decoding
// happens here so malformed responses surface as ErrBadResponse instead of
// propagating zero values.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
	logger     *zap.Logger
}

// NewClient constructs an API client for the given base URL.
func NewClient(baseURL string, creds CredentialSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		creds:      creds,
		logger:     logger,
	}
}

// Login exchanges email and password for a user/token pair.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and returns the same pair login does.
func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (AuthResult, error) {
	var envelope authEnvelope
	if err := c.do(ctx, http.MethodPost, path, body, false, &envelope); err != nil {
		return AuthResult{}, err
	}
	if envelope.User == nil || envelope.User.ID == "" || envelope.Token == "" {
		return AuthResult{}, fmt.Errorf("%w: auth response missing user or token", ErrBadResponse)
	}
	return AuthResult{User: *envelope.User, Token: envelope.Token}, nil
}

// GetLocation fetches a location record by place id.
func (c *Client) GetLocation(ctx context.Context, placeID string) (LocationRecord, error) {
	var envelope locationEnvelope
	path := "/locations/" + url.PathEscape(placeID)
	if err := c.do(ctx, http.MethodGet, path, nil, true, &envelope); err != nil {
		return LocationRecord{}, err
	}
	return c.requireLocation(envelope)
}

// CreateLocation creates a location record keyed by the place id.
func (c *Client) CreateLocation(ctx context.Context, record LocationRecord) (LocationRecord, error) {
	var envelope locationEnvelope
	if err := c.do(ctx, http.MethodPost, "/locations", record, true, &envelope); err != nil {
		return LocationRecord{}, err
	}
	return c.requireLocation(envelope)
}

func (c *Client) requireLocation(envelope locationEnvelope) (LocationRecord, error) {
	if envelope.Location == nil || envelope.Location.ID == "" {
		return LocationRecord{}, fmt.Errorf("%w: response missing location record", ErrBadResponse)
	}
	return *envelope.Location, nil
}

// ListComments returns a location's comments in server order.
func (c *Client) ListComments(ctx context.Context, locationID string) ([]Comment, error) {
	var envelope commentsEnvelope
	path := "/locations/" + url.PathEscape(locationID) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, nil, true, &envelope); err != nil {
		return nil, err
	}
	return envelope.Comments, nil
}

// CreateComment posts a new comment on the location.
func (c *Client) CreateComment(ctx context.Context, locationID, text string) (Comment, error) {
	var envelope commentEnvelope
	path := "/locations/" + url.PathEscape(locationID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"comment": text}, true, &envelope); err != nil {
		return Comment{}, err
	}
	return c.requireComment(envelope)
}

// UpdateComment replaces a comment's text.
func (c *Client) UpdateComment(ctx context.Context, locationID, commentID, text string) (Comment, error) {
	var envelope commentEnvelope
	path := "/locations/" + url.PathEscape(locationID) + "/comments/" + url.PathEscape(commentID)
	if err := c.do(ctx, http.MethodPatch, path, map[string]string{"comment": text}, true, &envelope); err != nil {
		return Comment{}, err
	}
	return c.requireComment(envelope)
}

func (c *Client) requireComment(envelope commentEnvelope) (Comment, error) {
	if envelope.Comment == nil || envelope.Comment.ID == "" {
		return Comment{}, fmt.Errorf("%w: response missing comment record", ErrBadResponse)
	}
	return *envelope.Comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, locationID, commentID string) error {
	path := "/locations/" + url.PathEscape(locationID) + "/comments/" + url.PathEscape(commentID)
	return c.do(ctx, http.MethodDelete, path, nil, true, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authed {
		request.Header.Set("Authorization", "Bearer "+c.creds.Token())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return c.statusError(method, path, response.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

func (c *Client) statusError(method, path string, status int, raw []byte) error {
	message := serverMessage(raw)
	c.logger.Debug("api request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("message", message))

	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	default:
		return &StatusError{StatusCode: status, Message: message}
	}
}

func serverMessage(raw []byte) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}
