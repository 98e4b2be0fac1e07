package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple lowercase", input: "api", want: "api"},
		{name: "uppercase to lowercase", input: "MyAPI", want: "myapi"},
		{name: "spaces to hyphens", input: "home infra", want: "home-infra"},
		{name: "underscores to hyphens", input: "home_infra", want: "home-infra"},
		{name: "repo style", input: "acme/api.v2", want: "acme-api-v2"},
		{name: "collapses hyphens", input: "a  --  b", want: "a-b"},
		{name: "removes invalid characters", input: "work@home!", want: "workhome"},
		{name: "trims hyphens", input: "-inbox-", want: "inbox"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "symbols only", input: "@@@", wantErr: true},
		{name: "too long", input: strings.Repeat("a", maxSlugLen+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSlug(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeSlug(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	valid := []string{"api", "home-infra", "2025-goals"}
	for _, s := range valid {
		if err := ValidateSlug(s); err != nil {
			t.Errorf("ValidateSlug(%q) unexpected error: %v", s, err)
		}
	}

	invalid := []string{"", "Api", "-api", "a_b", "a/b"}
	for _, s := range invalid {
		if err := ValidateSlug(s); err == nil {
			t.Errorf("ValidateSlug(%q) expected error", s)
		}
	}
}

func TestKeySegment(t *testing.T) {
	if got := KeySegment("acme/api"); got != "acme_api" {
		t.Errorf("KeySegment = %q", got)
	}
	if got := KeySegment("plain"); got != "plain" {
		t.Errorf("KeySegment = %q", got)
	}
}

func TestLayout(t *testing.T) {
	l := Layout{Root: "/tmp/cache"}
	if got := l.ItemFile("github-acme_api-1"); got != filepath.Join("/tmp/cache", "items", "github-acme_api-1.json") {
		t.Errorf("ItemFile = %q", got)
	}
	dirs := l.LegacyDirs("todoist")
	if len(dirs) != 2 || dirs[1] != filepath.Join("/tmp/cache", "todoist", "tasks") {
		t.Errorf("LegacyDirs = %v", dirs)
	}
	if l.SyncFile() != filepath.Join("/tmp/cache", "sync.json") {
		t.Errorf("SyncFile = %q", l.SyncFile())
	}
}

func TestItemPath(t *testing.T) {
	l := Layout{Root: "/tmp/cache"}
	got, err := l.ItemPath("6Xq2")
	if err != nil || got != filepath.Join("/tmp/cache", "items", "6Xq2.json") {
		t.Errorf("ItemPath = %q, %v", got, err)
	}
	for _, key := range []string{"", ".", "..", "../escape", "a/b", `a\b`, "a\x00b"} {
		if _, err := l.ItemPath(key); err == nil {
			t.Errorf("ItemPath(%q) should fail", key)
		}
	}
}
