package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/testutil"
)

func resetCommentFlags() {
	commentSystem, commentRepo, commentProject = "", "", ""
	commentIssue = 0
	commentTaskID, commentBody = "", ""
	commentDryRun, commentJSON = false, false
}

func TestComment_IssueResolvedFromCache(t *testing.T) {
	defer resetCommentFlags()
	app := newTestApp(t)
	seed(t, app, testutil.Issue(domain.SystemGitHub, "acme/api", "42", "Fix it"))

	var sent map[string]string
	stubProviders(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/acme/api/issues/42/comments" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&sent)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":9001,"user":{"login":"octo"},"body":"Fixed in main","html_url":"https://github.com/acme/api/issues/42#issuecomment-9001","created_at":"2025-03-01T10:00:00Z"}`))
	})

	commentIssue = 42
	commentBody = "  Fixed in main\n"
	out, err := execute(t, app, runComment)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, "Fixed in main", sent["body"])
	if !strings.Contains(out, "Commented on github acme/api#42 (comment 9001)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "issuecomment-9001") {
		t.Errorf("comment URL missing:\n%s", out)
	}
}

func TestComment_TaskBodyFromStdin(t *testing.T) {
	defer resetCommentFlags()
	app := newTestApp(t)

	var sent map[string]string
	stubProviders(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/comments" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&sent)
		w.Write([]byte(`{"id":"c7","content":"Called the bank","posted_at":"2025-03-01T10:00:00Z"}`))
	})

	commentTaskID = "t9"
	commentJSON = true

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("Called the bank\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	testutil.AssertNoError(t, runComment(app, cmd, []string{"-"}))

	testutil.AssertEqual(t, "t9", sent["task_id"])
	testutil.AssertEqual(t, "Called the bank", sent["content"])

	var got map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	testutil.AssertEqual(t, "todoist", got["system"])
	testutil.AssertEqual(t, "c7", got["id"])
	testutil.AssertEqual(t, "t9", got["target"])
}

func TestComment_BodyFromFile(t *testing.T) {
	defer resetCommentFlags()
	app := newTestApp(t)
	path := testutil.WriteFile(t, t.TempDir(), "note.md", "Deployed to staging.\n")

	var sent map[string]string
	stubProviders(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		w.Write([]byte(`{"id":17,"user":{"login":"me"},"body":"Deployed to staging.","created_at":"2025-03-01T10:00:00Z"}`))
	})

	commentSystem = "forgejo"
	commentRepo = "home/infra"
	commentIssue = 3
	_, err := execute(t, app, runComment, path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Deployed to staging.", sent["body"])
}

func TestComment_DryRunPostsNothing(t *testing.T) {
	defer resetCommentFlags()
	app := newTestApp(t)
	forbidProviders(t)

	commentTaskID = "t9"
	commentBody = "later"
	commentDryRun = true
	out, err := execute(t, app, runComment)
	testutil.AssertNoError(t, err)
	if !strings.Contains(out, "[DRY RUN] Would comment on todoist task t9") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestComment_RejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		args  []string
	}{
		{"no body", func() { commentIssue = 1; commentRepo = "acme/api"; commentSystem = "github" }, nil},
		{"blank body", func() { commentTaskID = "t1"; commentBody = "   " }, nil},
		{"body and file", func() { commentTaskID = "t1"; commentBody = "x" }, []string{"note.md"}},
		{"no target", func() { commentBody = "x" }, nil},
		{"issue and task", func() { commentIssue = 1; commentTaskID = "t1"; commentBody = "x" }, nil},
		{"task with repo", func() { commentTaskID = "t1"; commentRepo = "acme/api"; commentBody = "x" }, nil},
		{"task on github", func() { commentTaskID = "t1"; commentSystem = "github"; commentBody = "x" }, nil},
		{"bad system", func() { commentIssue = 1; commentSystem = "jira"; commentRepo = "a/b"; commentBody = "x" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer resetCommentFlags()
			app := newTestApp(t)
			forbidProviders(t)
			tt.setup()

			_, err := execute(t, app, runComment, tt.args...)
			if !isValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestComment_MissingFile(t *testing.T) {
	defer resetCommentFlags()
	app := newTestApp(t)
	forbidProviders(t)

	commentTaskID = "t1"
	_, err := execute(t, app, runComment, filepath.Join(t.TempDir(), "absent.md"))
	testutil.AssertError(t, err)
}
