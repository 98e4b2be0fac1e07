package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lherron/todu/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "gh-token")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestFetch_PagesUntilShortPage(t *testing.T) {
	var pages []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer gh-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/repos/acme/api/issues" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("state") != "all" {
			t.Errorf("state = %q, want all", r.URL.Query().Get("state"))
		}
		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		var batch []map[string]interface{}
		count := perPage
		if page == "2" {
			count = 3
		}
		for i := 0; i < count; i++ {
			batch = append(batch, map[string]interface{}{
				"number":     i + 1,
				"title":      fmt.Sprintf("issue %d", i+1),
				"state":      "open",
				"created_at": "2025-01-01T00:00:00Z",
				"updated_at": "2025-01-02T00:00:00Z",
			})
		}
		json.NewEncoder(w).Encode(batch)
	})

	items, err := c.Fetch(context.Background(), provider.Query{Scope: "acme/api"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != perPage+3 {
		t.Errorf("got %d items, want %d", len(items), perPage+3)
	}
	if strings.Join(pages, ",") != "1,2" {
		t.Errorf("requested pages %v", pages)
	}
}

func TestFetch_SinceAndSingle(t *testing.T) {
	var sawSince string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/api/issues":
			sawSince = r.URL.Query().Get("since")
			w.Write([]byte(`[]`))
		case "/repos/acme/api/issues/42":
			w.Write([]byte(`{"number":42,"title":"PR","state":"open","pull_request":{"url":"x"},
				"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z"}`))
		default:
			http.NotFound(w, r)
		}
	})

	since := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := c.Fetch(context.Background(), provider.Query{Scope: "acme/api", Since: &since}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if sawSince != "2025-03-01T12:00:00Z" {
		t.Errorf("since = %q", sawSince)
	}

	items, err := c.Fetch(context.Background(), provider.Query{Scope: "acme/api", ID: "42"})
	if err != nil {
		t.Fatalf("single Fetch failed: %v", err)
	}
	if len(items) != 1 || !items[0].IsPullRequest() {
		t.Fatalf("expected one pull request, got %+v", items)
	}
}

func TestFetch_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	})

	_, err := c.Fetch(context.Background(), provider.Query{Scope: "acme/api"})
	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.Status)
	}
}

func TestFetch_RequiresRepo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := c.Fetch(context.Background(), provider.Query{}); err == nil {
		t.Fatal("expected error without repository")
	}
}

func TestSetLabelsAndClose(t *testing.T) {
	var labelsBody, patchBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/repos/acme/api/issues/7/labels":
			labelsBody = string(data)
			w.Write([]byte(`[]`))
		case r.Method == http.MethodPatch && r.URL.Path == "/repos/acme/api/issues/7":
			patchBody = string(data)
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	ctx := context.Background()
	err := c.SetLabels(ctx, "acme/api", 7, []provider.Label{{Name: "bug"}, {Name: "status:done"}})
	if err != nil {
		t.Fatalf("SetLabels failed: %v", err)
	}
	if labelsBody != `{"labels":["bug","status:done"]}` {
		t.Errorf("labels body = %s", labelsBody)
	}

	if err := c.CloseIssue(ctx, "acme/api", 7, "not_planned"); err != nil {
		t.Fatalf("CloseIssue failed: %v", err)
	}
	if !strings.Contains(patchBody, `"state":"closed"`) || !strings.Contains(patchBody, `"state_reason":"not_planned"`) {
		t.Errorf("patch body = %s", patchBody)
	}
}

func TestIssueLabels_RefusesPullRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"number":3,"state":"open","pull_request":{"url":"x"},
			"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z"}`))
	})

	_, err := c.IssueLabels(context.Background(), "acme/api", 3)
	var prErr *provider.PullRequestError
	if !errors.As(err, &prErr) {
		t.Fatalf("expected PullRequestError, got %v", err)
	}
}

func TestCreateComment(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/acme/api/issues/42/comments" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":9001,"user":{"login":"octo"},"body":"Looks good","html_url":"https://github.com/acme/api/issues/42#issuecomment-9001","created_at":"2025-03-01T10:00:00Z"}`))
	})

	comment, err := c.CreateComment(context.Background(), "acme/api", 42, "Looks good")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if body["body"] != "Looks good" {
		t.Errorf("body sent = %q", body["body"])
	}
	if comment.ID != "9001" || comment.Author != "octo" || comment.Target != "acme/api#42" {
		t.Errorf("unexpected comment %+v", comment)
	}
	if comment.PostedAt == nil || !comment.PostedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("PostedAt = %v", comment.PostedAt)
	}
}
