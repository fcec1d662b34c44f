package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/placeboard/placeboard/internal/auth"
	"github.com/placeboard/placeboard/internal/comments"
	"github.com/placeboard/placeboard/internal/locations"
	"github.com/placeboard/placeboard/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSigningSecret = "router-test-secret"

func newTestHandler(t *testing.T) http.Handler {
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

	handler, err := NewHTTPHandler(Dependencies{
		TokenManager: auth.NewTokenIssuer(auth.TokenIssuerConfig{
			SigningSecret: []byte(testSigningSecret),
			TokenTTL:      time.Hour,
		}),
		UserService:     userService,
		LocationService: locationService,
		CommentService:  commentService,
		Logger:          zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}

func registerTestUser(t *testing.T, handler http.Handler, name, email string) (userID, token string) {
	t.Helper()

	recorder := doJSON(t, handler, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "strong password",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("registration failed with status %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decodeJSON(t, recorder, &response)
	if response.User.ID == "" || response.Token == "" {
		t.Fatalf("registration response missing user or token: %s", recorder.Body.String())
	}
	return response.User.ID, response.Token
}
