package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Format represents an output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatNDJSON   Format = "ndjson"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists the accepted --format values
var Formats = []Format{FormatTable, FormatJSON, FormatNDJSON, FormatYAML, FormatMarkdown}

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("invalid format %q: must be one of: %s", s, strings.Join(names, ", "))
}

// Options for rendering
type Options struct {
	Format    Format
	Porcelain bool
	// MaxWidth caps each table cell's display width; 0 means unlimited
	MaxWidth int
}

// Renderer handles output rendering
type Renderer struct {
	writer io.Writer
	opts   Options
}

// NewRenderer creates a new renderer
func NewRenderer(writer io.Writer, opts Options) *Renderer {
	return &Renderer{
		writer: writer,
		opts:   opts,
	}
}

// RenderJSON renders data as JSON
func (r *Renderer) RenderJSON(data interface{}) error {
	encoder := json.NewEncoder(r.writer)
	if !r.opts.Porcelain {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// RenderNDJSON renders data as newline-delimited JSON
func (r *Renderer) RenderNDJSON(items []interface{}) error {
	encoder := json.NewEncoder(r.writer)
	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// RenderYAML renders data as YAML
func (r *Renderer) RenderYAML(data interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(data)
}

// RenderTable renders data as a formatted table. Widths are measured in
// terminal cells so wide runes line up.
func (r *Renderer) RenderTable(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	if r.opts.MaxWidth > 0 {
		for _, row := range rows {
			for i := range row {
				row[i] = Truncate(row[i], r.opts.MaxWidth)
			}
		}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	if r.opts.Porcelain {
		fmt.Fprintln(r.writer, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(r.writer, strings.Join(row, "\t"))
		}
		return nil
	}

	r.renderTableRow(headers, widths)
	r.renderTableSeparator(widths)
	for _, row := range rows {
		r.renderTableRow(row, widths)
	}
	return nil
}

func (r *Renderer) renderTableRow(cells []string, widths []int) {
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if i < len(cells)-1 {
			fmt.Fprint(r.writer, runewidth.FillRight(cell, widths[i]), "  ")
		} else {
			fmt.Fprint(r.writer, cell)
		}
	}
	fmt.Fprintln(r.writer)
}

func (r *Renderer) renderTableSeparator(widths []int) {
	for i, width := range widths {
		fmt.Fprint(r.writer, strings.Repeat("-", width))
		if i < len(widths)-1 {
			fmt.Fprint(r.writer, "  ")
		}
	}
	fmt.Fprintln(r.writer)
}

// Truncate shortens s to width terminal cells, ending in "..." when cut
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width < 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// RenderMarkdown writes markdown, styled for the terminal when pretty is set
func (r *Renderer) RenderMarkdown(md string, pretty bool) error {
	if !pretty {
		_, err := fmt.Fprintln(r.writer, md)
		return err
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("init markdown renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = fmt.Fprint(r.writer, out)
	return err
}
