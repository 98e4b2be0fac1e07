package cli

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/registry"
	"github.com/lherron/todu/internal/testutil"
)

func resetProjectsFlags() {
	projectsSystem, projectsRepo, projectsProjectID, projectsNickname = "", "", "", ""
	projectsJSON = false
}

func TestProjects_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	defer resetProjectsFlags()

	out, err := execute(t, app, runProjectsList)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "No projects registered.\n", out)

	projectsSystem, projectsRepo = "github", "acme/api"
	out, err = execute(t, app, runProjectsRegister, "My API")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Registered my-api: github acme/api\n", out)

	resetProjectsFlags()
	projectsSystem, projectsProjectID = "todoist", "2203306141"
	_, err = execute(t, app, runProjectsRegister, "home")
	testutil.AssertNoError(t, err)

	resetProjectsFlags()
	projectsRepo, projectsNickname = "acme/backend", "backend"
	out, err = execute(t, app, runProjectsUpdate, "my-api")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Updated backend: github acme/backend\n", out)

	resetProjectsFlags()
	projectsJSON = true
	out, err = execute(t, app, runProjectsList)
	testutil.AssertNoError(t, err)
	var entries []registry.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	testutil.AssertEqual(t, 2, len(entries))
	testutil.AssertEqual(t, "backend", entries[0].Nickname)
	testutil.AssertEqual(t, "acme/backend", entries[0].Repo)
	testutil.AssertEqual(t, "home", entries[1].Nickname)

	resetProjectsFlags()
	out, err = execute(t, app, runProjectsRemove, "backend")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Removed backend\n", out)

	out, err = execute(t, app, runProjectsList)
	testutil.AssertNoError(t, err)
	if !strings.Contains(out, "home") || strings.Contains(out, "backend") {
		t.Errorf("unexpected listing:\n%s", out)
	}
}

func TestProjects_RegisterValidation(t *testing.T) {
	app := newTestApp(t)
	defer resetProjectsFlags()

	tests := []struct {
		name   string
		system string
		repo   string
		id     string
	}{
		{"unknown system", "jira", "acme/api", ""},
		{"repo missing", "forgejo", "", ""},
		{"project id missing", "todoist", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projectsSystem, projectsRepo, projectsProjectID = tt.system, tt.repo, tt.id
			_, err := execute(t, app, runProjectsRegister, "x")
			if !isValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestProjects_DuplicateAndMissing(t *testing.T) {
	app := newTestApp(t)
	defer resetProjectsFlags()

	projectsSystem, projectsRepo = "github", "acme/api"
	_, err := execute(t, app, runProjectsRegister, "api")
	testutil.AssertNoError(t, err)
	_, err = execute(t, app, runProjectsRegister, "API")
	testutil.AssertError(t, err)

	_, err = execute(t, app, runProjectsRemove, "nope")
	testutil.AssertError(t, err)
	_, err = execute(t, app, runProjectsUpdate, "nope")
	testutil.AssertError(t, err)
}

func TestMergeProject_SwitchingSystemClearsScope(t *testing.T) {
	p := domain.Project{System: domain.SystemGitHub, Repo: "acme/api"}

	got := mergeProject(p, "todoist", "", "42")
	testutil.AssertEqual(t, domain.SystemTodoist, got.System)
	testutil.AssertEqual(t, "", got.Repo)
	testutil.AssertEqual(t, "42", got.ProjectID)

	got = mergeProject(p, "github", "acme/web", "")
	testutil.AssertEqual(t, "acme/web", got.Repo)
}

func TestProjects_TodoistListsRemoteProjects(t *testing.T) {
	app := newTestApp(t)
	defer resetProjectsFlags()

	projectsSystem, projectsProjectID = "todoist", "p2"
	_, err := execute(t, app, runProjectsRegister, "home")
	testutil.AssertNoError(t, err)
	resetProjectsFlags()

	stubProviders(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"results":[
			{"id":"p1","name":"Inbox","inbox_project":true},
			{"id":"p2","name":"Home","is_favorite":true}
		],"next_cursor":null}`))
	})

	out, err := execute(t, app, runProjectsTodoist)
	testutil.AssertNoError(t, err)
	// "home" is the registered nickname of p2
	for _, want := range []string{"Inbox [INBOX]", "Home ⭐", "REGISTERED AS", "home"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	projectsJSON = true
	out, err = execute(t, app, runProjectsTodoist)
	testutil.AssertNoError(t, err)
	var got []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	testutil.AssertEqual(t, 2, len(got))
	testutil.AssertEqual(t, "p1", got[0]["id"])
}

func TestProjects_TodoistNeedsToken(t *testing.T) {
	t.Setenv("TODOIST_TOKEN", "")
	t.Setenv("TODOIST_TOKEN_FILE", "")
	app := newTestApp(t)

	_, err := execute(t, app, runProjectsTodoist)
	var missing *domain.MissingCredentialError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}
