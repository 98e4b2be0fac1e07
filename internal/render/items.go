package render

import (
	"fmt"
	"strings"

	"github.com/lherron/todu/internal/domain"
)

// ItemHeaders are the columns of the item table
var ItemHeaders = []string{"SYSTEM", "ID", "STATUS", "PRIORITY", "SCOPE", "TITLE", "UPDATED"}

// itemScope is the repository for issues and the project id for tasks
func itemScope(item *domain.Item) string {
	if item.SystemData.Repo != "" {
		return item.SystemData.Repo
	}
	return item.SystemData.ProjectID
}

// ItemRows turns items into table rows
func ItemRows(items []domain.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for i := range items {
		item := &items[i]
		priority := string(item.Priority)
		if priority == "" {
			priority = "-"
		}
		rows = append(rows, []string{
			string(item.System),
			item.ID,
			string(item.Status),
			priority,
			itemScope(item),
			item.Title,
			item.EffectiveTimestamp(),
		})
	}
	return rows
}

// ItemsMarkdown renders the plain listing used by --format markdown
func ItemsMarkdown(items []domain.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d item(s):\n\n", len(items))
	for i := range items {
		item := &items[i]
		fmt.Fprintf(&b, "[%s] #%s: %s\n", strings.ToUpper(string(item.System)), item.ID, item.Title)
		if len(item.Labels) > 0 {
			fmt.Fprintf(&b, "  Labels: %s\n", strings.Join(item.Labels, ", "))
		}
		fmt.Fprintf(&b, "  Status: %s\n", item.Status)
		if item.SystemData.Due != nil && *item.SystemData.Due != "" {
			fmt.Fprintf(&b, "  Due: %s\n", *item.SystemData.Due)
		} else if item.DueDate != nil && *item.DueDate != "" {
			fmt.Fprintf(&b, "  Due: %s\n", *item.DueDate)
		}
		fmt.Fprintf(&b, "  URL: %s\n\n", item.URL)
	}
	return b.String()
}

// RenderItems writes items in the renderer's format
func (r *Renderer) RenderItems(items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	switch r.opts.Format {
	case FormatJSON:
		return r.RenderJSON(items)
	case FormatNDJSON:
		out := make([]interface{}, len(items))
		for i := range items {
			out[i] = items[i]
		}
		return r.RenderNDJSON(out)
	case FormatYAML:
		return r.RenderYAML(items)
	case FormatMarkdown:
		_, err := fmt.Fprint(r.writer, ItemsMarkdown(items))
		return err
	default:
		if len(items) == 0 {
			_, err := fmt.Fprintln(r.writer, "No items match.")
			return err
		}
		return r.RenderTable(ItemHeaders, ItemRows(items))
	}
}
