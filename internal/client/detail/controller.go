package detail

import (
	"context"
	"errors"
	"sync"

	"github.com/placeboard/placeboard/internal/client/api"
	"github.com/placeboard/placeboard/internal/client/places"
	"github.com/placeboard/placeboard/internal/client/session"
	"go.uber.org/zap"
)

// State names the phase of the detail view's fixed dependency order.
type State string

const (
	// StateResolvingPlace waits for a usable place selection. There is no
	// timeout; an unresolvable place keeps the view here.
	StateResolvingPlace State = "resolving_place"
	// StateCheckingLocation is the get-or-create of the backend record.
	StateCheckingLocation State = "checking_location"
	// StateReady enables the comment thread.
	StateReady State = "ready"
)

var (
	// ErrNotReady indicates a comment operation before a location record exists.
	ErrNotReady = errors.New("detail: view is not ready")
	// ErrBusy indicates a mutation while another one is still in flight.
	ErrBusy = errors.New("detail: a submission is already in flight")
)

// LocationResolver is the slice of the location service the controller needs.
type LocationResolver interface {
	GetOrCreate(ctx context.Context, selection places.Selection) (api.LocationRecord, error)
}

// CommentAPI is the slice of the comment service the controller needs.
type CommentAPI interface {
	List(ctx context.Context, locationID string) []api.Comment
	Create(ctx context.Context, locationID, text string) error
	Update(ctx context.Context, locationID, commentID, text string) error
	Delete(ctx context.Context, locationID, commentID string) error
}

// SessionReader supplies the current session for ownership checks.
type SessionReader interface {
	Current() session.Session
}

// Config wires the controller's collaborators.
type Config struct {
	PlaceID   string
	Resolver  places.Resolver
	Locations LocationResolver
	Comments  CommentAPI
	Session   SessionReader
	Logger    *zap.Logger
}

// CommentView decorates a comment with whether the current session may edit
// or delete it. Ownership is decided by the session's user id, never a
// hard-coded identity.
type CommentView struct {
	api.Comment
	Editable bool
}

// Snapshot is the render model: everything the UI needs, copied under lock.
type Snapshot struct {
	State       State
	PlaceName   string
	Coordinates places.Coordinates
	Record      *api.LocationRecord
	Comments    []CommentView
	Submitting  bool
}

// Controller sequences the detail view: resolve place, get-or-create the
// location record, then serve comment CRUD against a full-replace list.
//
// Every continuation that follows a network call re-checks the controller's
// generation before applying its result, so responses that settle after
// Teardown (navigation away, logout) are discarded instead of mutating a
// dead view.
type Controller struct {
	mu         sync.Mutex
	placeID    string
	resolver   places.Resolver
	locations  LocationResolver
	comments   CommentAPI
	session    SessionReader
	logger     *zap.Logger
	generation uint64

	state      State
	selection  places.Selection
	record     *api.LocationRecord
	list       []api.Comment
	submitting bool
}

// NewController constructs a controller for one place visit.
func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		placeID:   cfg.PlaceID,
		resolver:  cfg.Resolver,
		locations: cfg.Locations,
		comments:  cfg.Comments,
		session:   cfg.Session,
		logger:    logger,
		state:     StateResolvingPlace,
	}
}

// Enter starts the sequence. When a selection was carried over from the
// search that navigated here, the redundant by-id lookup is skipped;
// otherwise the place is re-resolved through the provider (direct links).
func (c *Controller) Enter(ctx context.Context, carried *places.Selection) error {
	generation := c.currentGeneration()

	selection, ok := carried.Clone()
	if !ok {
		resolved, err := c.resolver.Resolve(ctx, c.placeID)
		if errors.Is(err, places.ErrNoSelection) {
			// Malformed provider data: stay in ResolvingPlace, surface nothing.
			return nil
		}
		if err != nil {
			return err
		}
		selection = resolved
	}

	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		return nil
	}
	c.selection = selection
	c.state = StateCheckingLocation
	c.mu.Unlock()

	return c.checkLocation(ctx, generation, selection)
}

func (c *Controller) checkLocation(ctx context.Context, generation uint64, selection places.Selection) error {
	record, err := c.locations.GetOrCreate(ctx, selection)
	if err != nil {
		// No record id obtained: the view shows only the place name and the
		// comment section stays inert. The state is left as-is.
		c.logger.Warn("location check failed",
			zap.String("place_id", selection.PlaceID), zap.Error(err))
		return err
	}

	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		return nil
	}
	c.record = &record
	c.state = StateReady
	c.mu.Unlock()

	c.refreshList(ctx, generation, record.ID)
	return nil
}

// Refresh re-fetches the comment list for a ready view.
func (c *Controller) Refresh(ctx context.Context) error {
	generation, locationID, err := c.readyLocation()
	if err != nil {
		return err
	}
	c.refreshList(ctx, generation, locationID)
	return nil
}

// PostComment creates a comment and re-fetches the list on success. The list
// is never patched locally.
func (c *Controller) PostComment(ctx context.Context, text string) error {
	return c.mutate(ctx, func(locationID string) error {
		return c.comments.Create(ctx, locationID, text)
	})
}

// EditComment updates a comment's text and re-fetches the list on success.
func (c *Controller) EditComment(ctx context.Context, commentID, text string) error {
	return c.mutate(ctx, func(locationID string) error {
		return c.comments.Update(ctx, locationID, commentID, text)
	})
}

// DeleteComment removes a comment and re-fetches the list on success. The
// caller is responsible for having confirmed the deletion with the user.
func (c *Controller) DeleteComment(ctx context.Context, commentID string) error {
	return c.mutate(ctx, func(locationID string) error {
		return c.comments.Delete(ctx, locationID, commentID)
	})
}

// mutate runs one comment mutation under the submitting flag. On failure the
// flag is cleared and the prior list is left untouched so the user can retry.
func (c *Controller) mutate(ctx context.Context, operation func(locationID string) error) error {
	generation, locationID, err := c.readyLocation()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.submitting = true
	c.mu.Unlock()

	operationErr := operation(locationID)

	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		return nil
	}
	c.submitting = false
	c.mu.Unlock()

	if operationErr != nil {
		return operationErr
	}
	c.refreshList(ctx, generation, locationID)
	return nil
}

func (c *Controller) refreshList(ctx context.Context, generation uint64, locationID string) {
	list := c.comments.List(ctx, locationID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return
	}
	c.list = list
}

// Snapshot returns the current render model.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := Snapshot{
		State:       c.state,
		PlaceName:   c.selection.Name,
		Coordinates: c.selection.Coordinates,
		Submitting:  c.submitting,
	}
	if c.record != nil {
		recordCopy := *c.record
		snapshot.Record = &recordCopy
	}

	currentUserID := ""
	if current := c.session.Current(); current.User != nil {
		currentUserID = current.User.ID
	}
	snapshot.Comments = make([]CommentView, 0, len(c.list))
	for _, comment := range c.list {
		snapshot.Comments = append(snapshot.Comments, CommentView{
			Comment:  comment,
			Editable: currentUserID != "" && comment.CreatedBy.ID == currentUserID,
		})
	}
	return snapshot
}

// Teardown invalidates the view. In-flight continuations observe the bumped
// generation and discard their results.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = StateResolvingPlace
	c.selection = places.Selection{}
	c.record = nil
	c.list = nil
	c.submitting = false
}

func (c *Controller) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Controller) readyLocation() (uint64, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady || c.record == nil {
		return 0, "", ErrNotReady
	}
	return c.generation, c.record.ID, nil
}
