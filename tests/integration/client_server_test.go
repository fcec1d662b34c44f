package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/placeboard/placeboard/internal/auth"
	"github.com/placeboard/placeboard/internal/client/api"
	"github.com/placeboard/placeboard/internal/client/places"
	"github.com/placeboard/placeboard/internal/client/services"
	"github.com/placeboard/placeboard/internal/client/session"
	"github.com/placeboard/placeboard/internal/comments"
	"github.com/placeboard/placeboard/internal/locations"
	"github.com/placeboard/placeboard/internal/server"
	"github.com/placeboard/placeboard/internal/users"
	"gorm.io/gorm"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}, &locations.Location{}, &comments.Comment{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	userService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to build user service: %v", err)
	}
	locationService, err := locations.NewService(locations.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to build location service: %v", err)
	}
	commentService, err := comments.NewService(comments.ServiceConfig{
		Database:   db,
		IDProvider: comments.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to build comment service: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: auth.NewTokenIssuer(auth.TokenIssuerConfig{
			SigningSecret: []byte("integration-test-secret"),
			TokenTTL:      time.Hour,
		}),
		UserService:     userService,
		LocationService: locationService,
		CommentService:  commentService,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}

	backend := httptest.NewServer(handler)
	t.Cleanup(backend.Close)
	return backend
}

func newAuthenticatedClient(t *testing.T, baseURL, name, email string) (*api.Client, *session.Store) {
	t.Helper()

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"), nil)
	store.Restore()
	client := api.NewClient(baseURL, store, nil)

	result, err := client.Register(context.Background(), name, email, "strong password")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	err = store.Login(session.UserProfile{
		ID:    result.User.ID,
		Name:  result.User.Name,
		Email: result.User.Email,
	}, result.Token)
	if err != nil {
		t.Fatalf("session install failed: %v", err)
	}
	return client, store
}

func TestFirstVisitCreatesLocationAndCommentThread(t *testing.T) {
	backend := newBackend(t)
	client, _ := newAuthenticatedClient(t, backend.URL, "Ada", "ada@example.com")

	locationService := services.NewLocationService(client, nil)
	commentService := services.NewCommentService(client, nil)

	selection := places.Selection{PlaceID: "ChIJ-cafe", Name: "Cafe"}
	record, err := locationService.GetOrCreate(context.Background(), selection)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if record.ID != "ChIJ-cafe" || record.Address != "TEST" {
		t.Fatalf("unexpected created record: %+v", record)
	}

	// A second visit reuses the record instead of recreating it.
	again, err := locationService.GetOrCreate(context.Background(), selection)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if again.ID != record.ID {
		t.Fatalf("expected the same record, got %+v", again)
	}

	if err := commentService.Create(context.Background(), record.ID, "great espresso"); err != nil {
		t.Fatalf("comment create failed: %v", err)
	}
	list := commentService.List(context.Background(), record.ID)
	if len(list) != 1 || list[0].Text != "great espresso" {
		t.Fatalf("unexpected comment list: %+v", list)
	}
	if list[0].CreatedBy.Name != "Ada" {
		t.Fatalf("expected author snapshot, got %+v", list[0].CreatedBy)
	}

	if err := commentService.Update(context.Background(), record.ID, list[0].ID, "great espresso, slow wifi"); err != nil {
		t.Fatalf("comment update failed: %v", err)
	}
	if err := commentService.Delete(context.Background(), record.ID, list[0].ID); err != nil {
		t.Fatalf("comment delete failed: %v", err)
	}
	if remaining := commentService.List(context.Background(), record.ID); len(remaining) != 0 {
		t.Fatalf("expected empty thread after delete, got %+v", remaining)
	}
}

func TestBackendRejectsForeignCommentMutations(t *testing.T) {
	backend := newBackend(t)
	owner, _ := newAuthenticatedClient(t, backend.URL, "Ada", "ada@example.com")
	other, _ := newAuthenticatedClient(t, backend.URL, "Brin", "brin@example.com")

	ownerLocations := services.NewLocationService(owner, nil)
	record, err := ownerLocations.GetOrCreate(context.Background(), places.Selection{
		PlaceID: "ChIJ-cafe", Name: "Cafe",
	})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := services.NewCommentService(owner, nil).Create(context.Background(), record.ID, "mine"); err != nil {
		t.Fatalf("comment create failed: %v", err)
	}
	list := services.NewCommentService(other, nil).List(context.Background(), record.ID)
	if len(list) != 1 {
		t.Fatalf("expected the other user to see the comment, got %+v", list)
	}

	otherComments := services.NewCommentService(other, nil)
	if err := otherComments.Update(context.Background(), record.ID, list[0].ID, "hijacked"); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected foreign update to be rejected, got %v", err)
	}
	if err := otherComments.Delete(context.Background(), record.ID, list[0].ID); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected foreign delete to be rejected, got %v", err)
	}
}

func TestExpiredCredentialIsUnauthorized(t *testing.T) {
	backend := newBackend(t)
	client, store := newAuthenticatedClient(t, backend.URL, "Ada", "ada@example.com")

	store.Logout()
	_, err := client.GetLocation(context.Background(), "ChIJ-cafe")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without a credential, got %v", err)
	}
}
