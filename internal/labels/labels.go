// Package labels encodes status and priority as "family:value" tags, the
// write channel for providers without first-class status/priority fields.
package labels

import (
	"strings"

	"github.com/lherron/todu/internal/domain"
)

// Label families
const (
	FamilyStatus   = "status"
	FamilyPriority = "priority"
)

// DefaultColor is used for labels missing from Colors
const DefaultColor = "ededed"

// Colors is the scheme applied when a status/priority label is auto-created
var Colors = map[string]string{
	"status:backlog":     "d4c5f9",
	"status:in-progress": "fbca04",
	"status:done":        "0e8a16",
	"status:canceled":    "d93f0b",
	"priority:low":       "0075ca",
	"priority:medium":    "a2eeef",
	"priority:high":      "d73a4a",
}

// Color returns the colour (hex, no leading #) for a label name
func Color(name string) string {
	if c, ok := Colors[name]; ok {
		return c
	}
	return DefaultColor
}

// Split splits "family:value" into its parts
func Split(label string) (family, value string, ok bool) {
	return strings.Cut(label, ":")
}

// InFamily reports whether label belongs to family
func InFamily(label, family string) bool {
	f, _, ok := Split(label)
	return ok && f == family
}

// Status returns the first recognised status:<value> label
func Status(labels []string) (domain.Status, bool) {
	for _, l := range labels {
		family, value, ok := Split(l)
		if !ok || family != FamilyStatus {
			continue
		}
		switch s := domain.Status(value); s {
		case domain.StatusBacklog, domain.StatusInProgress, domain.StatusDone, domain.StatusCanceled:
			return s, true
		}
	}
	return "", false
}

// Priority returns the first recognised priority:<value> label
func Priority(labels []string) (domain.Priority, bool) {
	for _, l := range labels {
		family, value, ok := Split(l)
		if !ok || family != FamilyPriority {
			continue
		}
		switch p := domain.Priority(value); p {
		case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
			return p, true
		}
	}
	return domain.PriorityNone, false
}

// StatusLabel encodes a status as a label
func StatusLabel(s domain.Status) string {
	return FamilyStatus + ":" + string(s)
}

// PriorityLabel encodes a priority as a label. PriorityNone has no label.
func PriorityLabel(p domain.Priority) string {
	if p == domain.PriorityNone {
		return ""
	}
	return FamilyPriority + ":" + string(p)
}

// ReplaceFamily drops every label of family and appends replacement (when
// non-empty). Labels of other families keep their order.
func ReplaceFamily(current []string, family, replacement string) []string {
	out := make([]string, 0, len(current)+1)
	for _, l := range current {
		if InFamily(l, family) {
			continue
		}
		out = append(out, l)
	}
	if replacement != "" {
		out = append(out, replacement)
	}
	return out
}

// Without returns labels minus every member of family
func Without(current []string, family string) []string {
	return ReplaceFamily(current, family, "")
}

// FromTodoistPriority maps the task manager's 1-4 scale (4 = most urgent)
func FromTodoistPriority(n int) domain.Priority {
	switch n {
	case 4:
		return domain.PriorityHigh
	case 3:
		return domain.PriorityMedium
	case 2:
		return domain.PriorityLow
	default:
		return domain.PriorityNone
	}
}

// TodoistPriority is the inverse of FromTodoistPriority. PriorityNone maps to 1.
func TodoistPriority(p domain.Priority) int {
	switch p {
	case domain.PriorityHigh:
		return 4
	case domain.PriorityMedium:
		return 3
	case domain.PriorityLow:
		return 2
	default:
		return 1
	}
}

// ParsePriorityArg accepts either "high" or "priority:high"
func ParsePriorityArg(s string) string {
	if family, value, ok := Split(s); ok && family == FamilyPriority {
		return value
	}
	return s
}
