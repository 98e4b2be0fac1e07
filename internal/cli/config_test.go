package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lherron/todu/internal/testutil"
)

func TestConfig_ReportsTokensWithoutValues(t *testing.T) {
	app := newTestApp(t)
	t.Setenv("GITHUB_TOKEN", "ghp_secret")
	t.Setenv("GITHUB_TOKEN_FILE", "")
	t.Setenv("FORGEJO_TOKEN", "")
	t.Setenv("FORGEJO_TOKEN_FILE", "")
	t.Setenv("TODOIST_TOKEN", "")
	t.Setenv("TODOIST_TOKEN_FILE", "")

	configJSON = true
	defer func() { configJSON = false }()

	out, err := execute(t, app, runConfig)
	testutil.AssertNoError(t, err)
	if strings.Contains(out, "ghp_secret") {
		t.Fatal("token value leaked into output")
	}

	var report configReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	gh := report.Config["github_token"]
	testutil.AssertEqual(t, "(set)", gh.Value)
	testutil.AssertEqual(t, "environment variable GITHUB_TOKEN", gh.Source)
	testutil.AssertEqual(t, false, report.Config["todoist_token"].Valid)
	testutil.AssertEqual(t, true, report.Config["cache_dir"].Valid)
	// the ledger was opened and migrated at bootstrap
	testutil.AssertEqual(t, true, report.Config["db_path"].Valid)
	testutil.AssertEqual(t, "", report.Config["db_path"].Note)
	testutil.AssertEqual(t, "UTC", report.Config["timezone"].Value)
	testutil.AssertEqual(t, 2, len(report.Warnings))
}

func TestConfig_HumanReadable(t *testing.T) {
	app := newTestApp(t)
	t.Setenv("GITHUB_TOKEN", "x")
	t.Setenv("FORGEJO_TOKEN", "x")
	t.Setenv("TODOIST_TOKEN", "x")

	out, err := execute(t, app, runConfig)
	testutil.AssertNoError(t, err)
	for _, want := range []string{"Configuration Report", "cache_dir: ", "Status: ✓ Valid", "✓ No warnings"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
