package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPRefresher_ExchangesTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken != "refresh-1" {
			t.Fatalf("expected refresh_token in body, got %q (err=%v)", req.RefreshToken, err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-2",
			"refresh_token": "refresh-2",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	r := &HTTPRefresher{URL: srv.URL}
	grant, err := r.Refresh(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grant.AccessToken != "access-2" || grant.RefreshToken != "refresh-2" {
		t.Fatalf("unexpected grant %+v", grant)
	}
}

func TestHTTPRefresher_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := &HTTPRefresher{URL: srv.URL}
	if _, err := r.Refresh(context.Background(), "stale"); err == nil {
		t.Fatalf("expected error on 401 from identity provider")
	}
}

func TestHTTPRefresher_EmptyGrantIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	r := &HTTPRefresher{URL: srv.URL}
	if _, err := r.Refresh(context.Background(), "refresh-1"); err == nil {
		t.Fatalf("expected error on empty grant")
	}
}
