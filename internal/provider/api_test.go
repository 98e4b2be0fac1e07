package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestAPI_SendsHeadersAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "todu" {
			t.Errorf("User-Agent = %q", got)
		}
		if r.URL.Path != "/api/v1/things" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "x y" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	api, err := NewAPI(srv.URL+"/api/v1/", "secret")
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}

	var out struct {
		Name string `json:"name"`
	}
	if err := api.Get(context.Background(), "/things", url.Values{"q": {"x y"}}, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.Name != "ok" {
		t.Errorf("decoded name = %q", out.Name)
	}
}

func TestAPI_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	api, _ := NewAPI(srv.URL, "secret")
	err := api.Get(context.Background(), "/missing", nil, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.NotFound() {
		t.Errorf("NotFound() = false for status %d", apiErr.Status)
	}
}

func TestNewAPI_InvalidBase(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative"} {
		if _, err := NewAPI(base, "t"); err == nil {
			t.Errorf("NewAPI(%q) expected error", base)
		}
	}
}

func TestEscapeRepo(t *testing.T) {
	if got := EscapeRepo("acme/my repo"); got != "acme/my%20repo" {
		t.Errorf("EscapeRepo = %q", got)
	}
}
