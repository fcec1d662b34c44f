package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/placeboard/placeboard/internal/client/api"
	"github.com/placeboard/placeboard/internal/client/places"
)

type noCredentials struct{}

func (noCredentials) Token() string { return "test-token" }

// recordingBackend is an in-memory stand-in for the locations endpoints that
// counts requests and captures create bodies.
type recordingBackend struct {
	records      map[string]map[string]string
	getCount     int
	postCount    int
	lastPostBody map[string]string
	getStatus    int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{records: map[string]map[string]string{}}
}

func (b *recordingBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			b.getCount++
			if b.getStatus != 0 {
				w.WriteHeader(b.getStatus)
				w.Write([]byte(`{"message":"lookup failed"}`))
				return
			}
			id := r.URL.Path[len("/locations/"):]
			record, ok := b.records[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"not found"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"location": record})
		case http.MethodPost:
			b.postCount++
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode create body: %v", err)
			}
			b.lastPostBody = body
			if _, exists := b.records[body["_id"]]; exists {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"message":"already exists"}`))
				return
			}
			b.records[body["_id"]] = body
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"location": body})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}
}

func newLocationService(t *testing.T, backend *recordingBackend) (*LocationService, func()) {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	client := api.NewClient(server.URL, noCredentials{}, nil)
	return NewLocationService(client, nil), server.Close
}

func TestGetOrCreateCreatesOnFirstVisit(t *testing.T) {
	backend := newRecordingBackend()
	service, closeServer := newLocationService(t, backend)
	defer closeServer()

	record, err := service.GetOrCreate(context.Background(), places.Selection{
		PlaceID: "P1",
		Name:    "Cafe",
	})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if backend.getCount != 1 || backend.postCount != 1 {
		t.Fatalf("expected one GET and one POST, got %d and %d", backend.getCount, backend.postCount)
	}
	want := map[string]string{"_id": "P1", "name": "Cafe", "address": "TEST"}
	for key, value := range want {
		if backend.lastPostBody[key] != value {
			t.Fatalf("create body %s: expected %q, got %q", key, value, backend.lastPostBody[key])
		}
	}
	if record.ID != "P1" {
		t.Fatalf("expected returned record keyed by place id, got %q", record.ID)
	}
}

func TestGetOrCreateIsIdempotentAcrossVisits(t *testing.T) {
	backend := newRecordingBackend()
	service, closeServer := newLocationService(t, backend)
	defer closeServer()

	selection := places.Selection{PlaceID: "P1", Name: "Cafe", Address: "1 Main St"}
	if _, err := service.GetOrCreate(context.Background(), selection); err != nil {
		t.Fatalf("first visit failed: %v", err)
	}
	if _, err := service.GetOrCreate(context.Background(), selection); err != nil {
		t.Fatalf("second visit failed: %v", err)
	}
	if backend.postCount != 1 {
		t.Fatalf("expected exactly one create across both visits, got %d", backend.postCount)
	}
}

func TestGetOrCreateFailsClosedOnLookupError(t *testing.T) {
	backend := newRecordingBackend()
	backend.getStatus = http.StatusInternalServerError
	service, closeServer := newLocationService(t, backend)
	defer closeServer()

	_, err := service.GetOrCreate(context.Background(), places.Selection{PlaceID: "P1", Name: "Cafe"})
	if err == nil {
		t.Fatal("expected lookup failure to propagate")
	}
	if backend.postCount != 0 {
		t.Fatalf("a failed lookup must not trigger a create, got %d POSTs", backend.postCount)
	}
}

func TestGetOrCreateResolvesCreateRaceToWinner(t *testing.T) {
	var getCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			getCount++
			if getCount == 1 {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"not found"}`))
				return
			}
			// The winner's record, created between our GET and POST.
			w.Write([]byte(`{"location":{"_id":"P1","name":"Cafe (winner)","address":"1 Main St"}}`))
		case http.MethodPost:
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"already exists"}`))
		}
	}))
	defer server.Close()

	service := NewLocationService(api.NewClient(server.URL, noCredentials{}, nil), nil)
	record, err := service.GetOrCreate(context.Background(), places.Selection{PlaceID: "P1", Name: "Cafe"})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if record.Name != "Cafe (winner)" {
		t.Fatalf("expected the winning record, got %+v", record)
	}
}
