package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticCredentials string

func (c staticCredentials) Token() string { return string(c) }

func newTestClient(handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL, staticCredentials(token), nil), server
}

func TestProtectedRequestsCarryBearerToken(t *testing.T) {
	var seenAuthorization string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		seenAuthorization = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"location":{"_id":"P1","name":"Cafe","address":"1 Main St"}}`))
	}, "token-abc")
	defer server.Close()

	record, err := client.GetLocation(context.Background(), "P1")
	if err != nil {
		t.Fatalf("GetLocation failed: %v", err)
	}
	if seenAuthorization != "Bearer token-abc" {
		t.Fatalf("expected bearer header, got %q", seenAuthorization)
	}
	if record.ID != "P1" || record.Name != "Cafe" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestLoginOmitsBearerToken(t *testing.T) {
	var seenAuthorization string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		seenAuthorization = r.Header.Get("Authorization")
		w.Write([]byte(`{"user":{"id":"U1","name":"Ada","email":"ada@example.com"},"token":"fresh"}`))
	}, "stale-token")
	defer server.Close()

	result, err := client.Login(context.Background(), "ada@example.com", "strong password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if seenAuthorization != "" {
		t.Fatalf("login must not send a credential, got %q", seenAuthorization)
	}
	if result.User.ID != "U1" || result.Token != "fresh" {
		t.Fatalf("unexpected auth result: %+v", result)
	}
}

func TestStatusCodesMapToSentinelErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"conflict", http.StatusConflict, ErrConflict},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(testCase.status)
				w.Write([]byte(`{"message":"nope"}`))
			}, "token-abc")
			defer server.Close()

			_, err := client.GetLocation(context.Background(), "P1")
			if !errors.Is(err, testCase.want) {
				t.Fatalf("status %d: expected %v, got %v", testCase.status, testCase.want, err)
			}
		})
	}
}

func TestUnexpectedStatusCarriesServerMessage(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"database on fire"}`))
	}, "token-abc")
	defer server.Close()

	_, err := client.GetLocation(context.Background(), "P1")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError || statusErr.Message != "database on fire" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestMalformedBodyIsBadResponse(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"location": "not an object`))
	}, "token-abc")
	defer server.Close()

	_, err := client.GetLocation(context.Background(), "P1")
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestAuthResponseMissingTokenIsBadResponse(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"U1","name":"Ada"}}`))
	}, "")
	defer server.Close()

	_, err := client.Login(context.Background(), "ada@example.com", "strong password")
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse for missing token, got %v", err)
	}
}

func TestDeleteCommentIgnoresResponseBody(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.Write([]byte(`{"message":"deleted"}`))
	}, "token-abc")
	defer server.Close()

	if err := client.DeleteComment(context.Background(), "P1", "C1"); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
}
