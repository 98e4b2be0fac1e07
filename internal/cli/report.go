package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/render"
	"github.com/lherron/todu/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a daily or weekly report from the cache",
	Long: `Buckets cached items by status, due date and completion time in your
local timezone (--tz or TODU_TZ) and renders a markdown report.

Daily sections: in progress, overdue, due today, high priority, completed
today and canceled today. Weekly sections: completed and cancelled during
the Monday-to-Sunday week containing --week (default: this week).

Examples:
  todu report --type daily
  todu report --type weekly --week 2025-03-12
  todu report --type daily --pretty
  todu report --type weekly --output ~/reports/week.md`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.CacheOnly(), runReport),
}

var (
	reportType   string
	reportWeek   string
	reportOutput string
	reportPretty bool
	reportJSON   bool
)

// now is the report clock; tests pin it
var now = time.Now

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportType, "type", "t", "daily", "Report type: daily or weekly")
	reportCmd.Flags().StringVar(&reportWeek, "week", "", "Any date (YYYY-MM-DD) in the week to report on")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the report to a file instead of stdout")
	reportCmd.Flags().BoolVar(&reportPretty, "pretty", false, "Style the markdown for the terminal")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output the report sections as JSON")
}

func runReport(app *appctx.App, cmd *cobra.Command, args []string) error {
	if reportType != "daily" && reportType != "weekly" {
		return &domain.ValidationError{Field: "type", Value: reportType, Allowed: []string{"daily", "weekly"}}
	}
	if reportWeek != "" && reportType != "weekly" {
		return domain.Invalid("--week only applies to weekly reports")
	}
	if reportJSON && reportPretty {
		return domain.Invalid("cannot specify both --json and --pretty")
	}

	loc := app.Location
	ref := now().In(loc)
	if reportWeek != "" {
		t, err := time.ParseInLocation("2006-01-02", reportWeek, loc)
		if err != nil {
			return fmt.Errorf("invalid week date format: %s", reportWeek)
		}
		ref = t
	}

	items, err := app.Store.LoadAll()
	if err != nil {
		return err
	}

	var (
		data     interface{}
		markdown string
	)
	if reportType == "daily" {
		d := report.BuildDaily(items, ref, loc)
		data, markdown = d, d.Markdown()
	} else {
		w := report.BuildWeekly(items, ref, loc)
		data, markdown = w, w.Markdown()
	}

	var buf bytes.Buffer
	r := render.NewRenderer(&buf, render.Options{})
	if reportJSON {
		err = r.RenderJSON(data)
	} else {
		err = r.RenderMarkdown(markdown, reportPretty)
	}
	if err != nil {
		return err
	}

	if reportOutput == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	path := expandPath(reportOutput)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", path)
	return nil
}
