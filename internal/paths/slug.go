package paths

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	maxSlugLen  = 64
)

// NormalizeSlug turns a user-supplied project nickname into its canonical form.
// Rules:
// - Always lower-case
// - Spaces, underscores, dots and slashes become hyphens
// - Allowed characters: a-z, 0-9, -
// - Must start with [a-z0-9]
// - Max length: 64 bytes
func NormalizeSlug(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("nickname cannot be empty")
	}

	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "-", "_", "-", ".", "-", "/", "-").Replace(s)

	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	s = result.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if s == "" {
		return "", fmt.Errorf("nickname must contain at least one alphanumeric character")
	}
	if len(s) > maxSlugLen {
		return "", fmt.Errorf("nickname exceeds maximum length of %d bytes", maxSlugLen)
	}
	if !slugPattern.MatchString(s) {
		return "", fmt.Errorf("invalid nickname: %s", s)
	}

	return s, nil
}

// ValidateSlug checks a nickname is already in canonical form
func ValidateSlug(s string) error {
	if s == "" {
		return fmt.Errorf("nickname cannot be empty")
	}
	if len(s) > maxSlugLen {
		return fmt.Errorf("nickname exceeds maximum length of %d bytes", maxSlugLen)
	}
	if !slugPattern.MatchString(s) {
		return fmt.Errorf("invalid nickname: must be lowercase, start with alphanumeric, and contain only [a-z0-9-]")
	}
	return nil
}

// KeySegment makes a repository name safe for use inside a cache key:
// path separators become underscores. Repositories that differ only by
// '/' versus '_' (a_b/c and a/b_c) map to the same segment.
func KeySegment(repo string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(repo)
}
