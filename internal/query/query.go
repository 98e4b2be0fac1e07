// Package query filters and orders cached items for listing and reports.
package query

import (
	"sort"

	"github.com/lherron/todu/internal/domain"
)

// Filter narrows a listing. Empty fields match everything; supplied fields
// are combined with AND. Labels matches when the item carries any of them.
type Filter struct {
	System    domain.System
	Status    domain.Status
	Assignee  string
	Labels    []string
	ProjectID string
}

// Validate checks the enumerated fields
func (f Filter) Validate() error {
	if f.System != "" {
		if err := domain.ValidateSystem(string(f.System)); err != nil {
			return err
		}
	}
	if f.Status != "" {
		if err := domain.ValidateFilterStatus(string(f.Status)); err != nil {
			return err
		}
	}
	return nil
}

// Match reports whether item passes every supplied criterion
func (f Filter) Match(item *domain.Item) bool {
	if f.System != "" && item.System != f.System {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.Assignee != "" && !item.HasAssignee(f.Assignee) {
		return false
	}
	if f.ProjectID != "" && item.SystemData.ProjectID != f.ProjectID {
		return false
	}
	if len(f.Labels) > 0 {
		found := false
		for _, l := range f.Labels {
			if item.HasLabel(l) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply returns the items matching f, in input order
func Apply(items []domain.Item, f Filter) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for i := range items {
		if f.Match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// SortByRecency orders items newest first by their effective timestamp.
// The sort is stable so equal timestamps keep their load order.
func SortByRecency(items []domain.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EffectiveTimestamp() > items[j].EffectiveTimestamp()
	})
}
