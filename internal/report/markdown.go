package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/labels"
)

type mdWriter struct {
	lines []string
	loc   *time.Location
}

func (w *mdWriter) add(lines ...string) {
	w.lines = append(w.lines, lines...)
}

func (w *mdWriter) section(heading string, n int) {
	w.add(fmt.Sprintf("%s (%d)", heading, n), "")
}

// entry writes the title line, the " • " joined meta line, the url and a blank line
func (w *mdWriter) entry(title string, meta []string, url string) {
	w.add(title, "  "+strings.Join(meta, " • "), "  "+url, "")
}

func (w *mdWriter) String() string {
	return strings.Join(w.lines, "\n")
}

func (w *mdWriter) due(item *domain.Item) string {
	t, ok := dueDate(item, w.loc)
	if !ok {
		return ""
	}
	return t.Format(dateLayout)
}

type metaLine []string

func (m *metaLine) add(key, value string) {
	if value != "" {
		*m = append(*m, key+": "+value)
	}
}

func assignees(item *domain.Item) string {
	return strings.Join(item.Assignees, ", ")
}

func nonStatusLabels(item *domain.Item) string {
	return strings.Join(labels.Without(item.Labels, labels.FamilyStatus), ", ")
}

// Markdown renders the daily report. Empty sections are omitted.
func (d *Daily) Markdown() string {
	w := &mdWriter{loc: d.Date.Location()}
	w.add(
		"# Daily Task Report - "+d.Date.Format(dateLayout),
		"",
		"## Summary",
		fmt.Sprintf("- **In Progress**: %d tasks", len(d.InProgress)),
		fmt.Sprintf("- **Due/Overdue**: %d tasks", len(d.Overdue)+len(d.DueToday)),
		fmt.Sprintf("- **High Priority**: %d tasks", len(d.HighPriority)),
		fmt.Sprintf("- **Completed Today**: %d tasks", len(d.CompletedToday)),
		fmt.Sprintf("- **Canceled Today**: %d tasks", len(d.CanceledToday)),
		"",
	)

	if len(d.InProgress) > 0 {
		w.section("## 🚧 In Progress", len(d.InProgress))
		for i := range d.InProgress {
			item := &d.InProgress[i].Item
			meta := metaLine{"System: " + string(item.System)}
			meta.add("Priority", string(effectivePriority(item)))
			meta.add("Assignee", assignees(item))
			meta.add("Due", w.due(item))
			w.entry("**"+item.Title+"**", meta, item.URL)
		}
	}

	if len(d.Overdue) > 0 {
		w.section("## ⚠️  Overdue", len(d.Overdue))
		for i := range d.Overdue {
			e := &d.Overdue[i]
			meta := metaLine{"System: " + string(e.Item.System)}
			meta.add("Priority", string(effectivePriority(&e.Item)))
			meta.add("Assignee", assignees(&e.Item))
			w.entry(fmt.Sprintf("**%s** (%d days late)", e.Item.Title, e.DaysLate), meta, e.Item.URL)
		}
	}

	if len(d.DueToday) > 0 {
		w.section("## 📅 Due Today", len(d.DueToday))
		for i := range d.DueToday {
			item := &d.DueToday[i].Item
			meta := metaLine{"System: " + string(item.System)}
			meta.add("Priority", string(effectivePriority(item)))
			meta.add("Assignee", assignees(item))
			w.entry("**"+item.Title+"**", meta, item.URL)
		}
	}

	if len(d.HighPriority) > 0 {
		w.section("## 🔥 High Priority", len(d.HighPriority))
		for i := range d.HighPriority {
			item := &d.HighPriority[i].Item
			meta := metaLine{"System: " + string(item.System)}
			meta.add("Assignee", assignees(item))
			meta.add("Due", w.due(item))
			w.entry("**"+item.Title+"**", meta, item.URL)
		}
	}

	if len(d.CompletedToday) > 0 {
		w.section("## ✅ Completed Today", len(d.CompletedToday))
		for i := range d.CompletedToday {
			item := &d.CompletedToday[i].Item
			meta := metaLine{"System: " + string(item.System), "Status: " + string(item.Status)}
			meta.add("Assignee", assignees(item))
			meta.add("Labels", nonStatusLabels(item))
			w.entry("**"+item.Title+"**", meta, item.URL)
		}
	}

	if len(d.CanceledToday) > 0 {
		w.section("## ❌ Canceled Today", len(d.CanceledToday))
		for i := range d.CanceledToday {
			item := &d.CanceledToday[i].Item
			meta := metaLine{"System: " + string(item.System)}
			meta.add("Assignee", assignees(item))
			meta.add("Labels", nonStatusLabels(item))
			w.entry("**"+item.Title+"**", meta, item.URL)
		}
	}

	return w.String()
}

// Markdown renders the weekly report, entries in chronological order
func (wk *Weekly) Markdown() string {
	w := &mdWriter{loc: wk.Start.Location()}
	w.add(
		"# Weekly Task Report - Week of "+wk.Start.Format(dateLayout),
		"",
		"## Summary",
		fmt.Sprintf("- **Completed**: %d tasks", len(wk.Completed)),
		fmt.Sprintf("- **Cancelled**: %d tasks", len(wk.Canceled)),
		"",
	)

	write := func(heading, key string, list []Entry) {
		if len(list) == 0 {
			return
		}
		w.section(heading, len(list))
		for i := range list {
			e := &list[i]
			meta := metaLine{"System: " + string(e.Item.System), key + ": " + e.At.Format(dateLayout)}
			meta.add("Assignee", assignees(&e.Item))
			meta.add("Labels", nonStatusLabels(&e.Item))
			w.entry("**"+e.Item.Title+"**", meta, e.Item.URL)
		}
	}
	write("## ✅ Completed This Week", "Completed", wk.Completed)
	write("## ❌ Cancelled This Week", "Cancelled", wk.Canceled)

	return w.String()
}
