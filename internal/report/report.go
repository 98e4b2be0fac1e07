// Package report buckets cached items into daily and weekly views in the
// user's timezone and renders them as markdown.
package report

import (
	"sort"
	"time"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/labels"
)

// Entry is one item placed in a report section
type Entry struct {
	Item domain.Item `json:"item"`
	// DaysLate is set for overdue entries
	DaysLate int `json:"daysLate,omitempty"`
	// At is the bucketing instant for weekly entries, in the user's zone
	At *time.Time `json:"at,omitempty"`
}

// Daily is the report for one local calendar day
type Daily struct {
	Date           time.Time `json:"date"`
	InProgress     []Entry   `json:"inProgress"`
	Overdue        []Entry   `json:"overdue"`
	DueToday       []Entry   `json:"dueToday"`
	HighPriority   []Entry   `json:"highPriority"`
	CompletedToday []Entry   `json:"completedToday"`
	CanceledToday  []Entry   `json:"canceledToday"`
}

// Weekly is the report for one Monday-to-Sunday week
type Weekly struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Completed []Entry   `json:"completed"`
	Canceled  []Entry   `json:"canceled"`
}

// effectivePriority prefers the derived field and falls back to labels
func effectivePriority(item *domain.Item) domain.Priority {
	switch item.Priority {
	case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		return item.Priority
	}
	p, _ := labels.Priority(item.Labels)
	return p
}

func dueDate(item *domain.Item, loc *time.Location) (time.Time, bool) {
	if item.DueDate == nil || *item.DueDate == "" {
		return time.Time{}, false
	}
	t, _, err := ParseTimestamp(*item.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseField(s *string, loc *time.Location) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	t, _, err := ParseTimestamp(*s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// BuildDaily partitions items for the local day containing now
func BuildDaily(items []domain.Item, now time.Time, loc *time.Location) *Daily {
	today := now.In(loc)
	d := &Daily{
		Date:           civilDay(today),
		InProgress:     []Entry{},
		Overdue:        []Entry{},
		DueToday:       []Entry{},
		HighPriority:   []Entry{},
		CompletedToday: []Entry{},
		CanceledToday:  []Entry{},
	}

	for i := range items {
		item := items[i]
		status := item.Status

		if status == domain.StatusInProgress || (status == domain.StatusOpen && len(item.Assignees) > 0) {
			d.InProgress = append(d.InProgress, Entry{Item: item})
		}

		if due, ok := dueDate(&item, loc); ok && !status.IsTerminal() {
			switch late := daysBetween(due, today); {
			case late > 0:
				d.Overdue = append(d.Overdue, Entry{Item: item, DaysLate: late})
			case late == 0:
				d.DueToday = append(d.DueToday, Entry{Item: item})
			}
		}

		if effectivePriority(&item) == domain.PriorityHigh && !status.IsTerminal() {
			d.HighPriority = append(d.HighPriority, Entry{Item: item})
		}

		if status.IsCompleted() {
			if at, ok := parseField(item.CompletedAt, loc); ok && sameDay(at, today) {
				d.CompletedToday = append(d.CompletedToday, Entry{Item: item})
			}
		}

		if status == domain.StatusCanceled {
			updated := item.UpdatedAt
			if at, ok := parseField(&updated, loc); ok && sameDay(at, today) {
				d.CanceledToday = append(d.CanceledToday, Entry{Item: item})
			}
		}
	}
	return d
}

// BuildWeekly collects items finished or canceled in the week containing ref
func BuildWeekly(items []domain.Item, ref time.Time, loc *time.Location) *Weekly {
	start, end := WeekRange(ref, loc)
	w := &Weekly{Start: start, End: end, Completed: []Entry{}, Canceled: []Entry{}}

	inWeek := func(t time.Time) bool {
		return !t.Before(start) && !t.After(end)
	}

	for i := range items {
		item := items[i]
		switch {
		case item.Status.IsCompleted():
			if at, ok := parseField(item.CompletedAt, loc); ok && inWeek(at) {
				w.Completed = append(w.Completed, Entry{Item: item, At: &at})
			}
		case item.Status == domain.StatusCanceled:
			updated := item.UpdatedAt
			if at, ok := parseField(&updated, loc); ok && inWeek(at) {
				w.Canceled = append(w.Canceled, Entry{Item: item, At: &at})
			}
		}
	}

	byTime := func(list []Entry) func(i, j int) bool {
		return func(i, j int) bool { return list[i].At.Before(*list[j].At) }
	}
	sort.SliceStable(w.Completed, byTime(w.Completed))
	sort.SliceStable(w.Canceled, byTime(w.Canceled))
	return w
}
