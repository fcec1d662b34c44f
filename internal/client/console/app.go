package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/placeboard/placeboard/internal/client/api"
	"github.com/placeboard/placeboard/internal/client/places"
	"github.com/placeboard/placeboard/internal/client/services"
	"github.com/placeboard/placeboard/internal/client/session"
	"go.uber.org/zap"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Config wires the console app's collaborators.
type Config struct {
	Reader    io.Reader
	Writer    io.Writer
	Store     *session.Store
	APIClient *api.Client
	Resolver  places.Resolver
	Locations *services.LocationService
	Comments  *services.CommentService
	Logger    *zap.Logger
}

// App is the interactive terminal client: a thin shell over the session
// store, place resolver and backend services.
type App struct {
	reader     *bufio.Reader
	out        io.Writer
	store      *session.Store
	apiClient  *api.Client
	resolver   places.Resolver
	locations  *services.LocationService
	comments   *services.CommentService
	selections *places.Subscription
	logger     *zap.Logger
}

// NewApp constructs the console app.
func NewApp(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		reader:     bufio.NewReader(cfg.Reader),
		out:        cfg.Writer,
		store:      cfg.Store,
		apiClient:  cfg.APIClient,
		resolver:   cfg.Resolver,
		locations:  cfg.Locations,
		comments:   cfg.Comments,
		selections: places.NewSubscription(),
		logger:     logger,
	}
	// Logging out abandons any navigation still pending from a search.
	cfg.Store.OnChange(func(current session.Session) {
		if current.Authenticated() {
			return
		}
		select {
		case <-app.selections.Selections():
		default:
		}
	})
	return app
}

func (a *App) isLoggedIn() bool {
	return a.store.Current().Authenticated()
}

func (a *App) statusLine() string {
	current := a.store.Current()
	if current.User == nil {
		return "not logged in"
	}
	return current.User.Name
}

// Login prompts for credentials and authenticates against the backend. An
// auth failure is printed inline; nothing else is cleared.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	result, err := a.apiClient.Login(ctx, email, password)
	if err != nil {
		a.printAuthFailure(err)
		return nil
	}
	return a.installSession(result)
}

// Register prompts for account details and creates an account. Like the web
// form, a successful registration logs the user straight in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	result, err := a.apiClient.Register(ctx, name, email, password)
	if err != nil {
		a.printAuthFailure(err)
		return nil
	}
	return a.installSession(result)
}

func (a *App) installSession(result api.AuthResult) error {
	profile := session.UserProfile{
		ID:    result.User.ID,
		Name:  result.User.Name,
		Email: result.User.Email,
	}
	if err := a.store.Login(profile, result.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", profile.Name)
	return nil
}

func (a *App) printAuthFailure(err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		fmt.Fprintln(a.out, "Invalid credentials")
		return
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		fmt.Fprintln(a.out, statusErr.Message)
		return
	}
	a.logger.Error("authentication request failed", zap.Error(err))
	fmt.Fprintln(a.out, "Could not reach the server, try again")
}

// Logout clears the session.
func (a *App) Logout(_ context.Context) error {
	a.store.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Search runs a free-text place search, lets the user pick a suggestion and
// publishes at most one resolved selection. Unresolvable picks are dropped
// silently, matching the widget contract for malformed selections.
func (a *App) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		entered, err := getSimpleText(a.reader, "Search for a place", a.out)
		if err != nil {
			return err
		}
		query = entered
	}

	suggestions, err := a.resolver.Search(ctx, query)
	if err != nil {
		a.logger.Error("place search failed", zap.String("query", query), zap.Error(err))
		fmt.Fprintln(a.out, "Place search failed, try again")
		return nil
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(a.out, "No places found")
		return nil
	}

	for index, suggestion := range suggestions {
		fmt.Fprintf(a.out, "%2d. %s\n", index+1, suggestion.Description)
	}
	answer, err := getSimpleText(a.reader, "Pick a number (empty to cancel)", a.out)
	if err != nil {
		return err
	}
	if answer == "" {
		return nil
	}
	pick, err := strconv.Atoi(answer)
	if err != nil || pick < 1 || pick > len(suggestions) {
		fmt.Fprintln(a.out, "Not a valid choice")
		return nil
	}

	selection, err := a.resolver.Resolve(ctx, suggestions[pick-1].PlaceID)
	if err != nil {
		if errors.Is(err, places.ErrNoSelection) {
			return nil
		}
		a.logger.Error("place resolve failed", zap.Error(err))
		fmt.Fprintln(a.out, "Could not resolve that place")
		return nil
	}

	a.selections.Publish(selection)
	return nil
}

// Open navigates straight to a place by id, the direct-link path: no carried
// selection, so the detail view re-resolves through the provider.
func (a *App) Open(ctx context.Context, placeID string) error {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		fmt.Fprintln(a.out, "Usage: open <placeId>")
		return nil
	}
	return a.openDetail(ctx, placeID, nil)
}

// Close releases the selection subscription.
func (a *App) Close() {
	a.selections.Close()
}
