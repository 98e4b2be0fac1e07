package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/labels"
	"github.com/lherron/todu/internal/normalize"
	"github.com/lherron/todu/internal/provider"
	"github.com/lherron/todu/internal/render"
	"github.com/lherron/todu/internal/writeback"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue or task and cache it",
	Long: `Creates an issue on GitHub or Forgejo, or a task in Todoist, then syncs
the new item into the cache.

Issue labels (including the priority label) are created in the repository
when missing. For Todoist the priority becomes the task's priority field and
--due is passed through as a natural-language due string.

Examples:
  todu create --project api --title "Fix login" --priority high
  todu create --system github --repo acme/api --title "Docs" --labels docs,help-wanted
  todu create --system todoist --project-id 2203306141 --title "Call bank" --due tomorrow`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runCreate),
}

var (
	createSystem      string
	createRepo        string
	createProject     string
	createProjectID   string
	createTitle       string
	createDescription string
	createPriority    string
	createDue         string
	createLabels      string
	createJSON        bool
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createSystem, "system", "", "System to create in (github, forgejo, todoist)")
	createCmd.Flags().StringVar(&createRepo, "repo", "", "Repository in owner/name format")
	createCmd.Flags().StringVarP(&createProject, "project", "p", "", "Registered project nickname")
	createCmd.Flags().StringVar(&createProjectID, "project-id", "", "Todoist project ID")
	createCmd.Flags().StringVar(&createTitle, "title", "", "Title (required)")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Body or description")
	createCmd.Flags().StringVar(&createPriority, "priority", "", "Priority (high, medium, low or priority:<value>)")
	createCmd.Flags().StringVar(&createDue, "due", "", "Todoist due string, e.g. \"tomorrow\"")
	createCmd.Flags().StringVar(&createLabels, "labels", "", "Comma-separated labels")
	createCmd.Flags().BoolVar(&createJSON, "json", false, "Output the created item as JSON")
}

func runCreate(app *appctx.App, cmd *cobra.Command, args []string) error {
	if createTitle == "" {
		return domain.Invalid("--title is required")
	}
	priority := labels.ParsePriorityArg(createPriority)
	if priority != "" {
		if err := domain.ValidatePriority(priority); err != nil {
			return err
		}
	}

	project, err := projectScope(app, createProject, createSystem, createRepo, createProjectID)
	if err != nil {
		return err
	}
	if createDue != "" && project.System != domain.SystemTodoist {
		return domain.Invalid("--due is only supported for todoist tasks")
	}

	ctx := commandContext(cmd)
	var (
		item domain.Item
		f    provider.Fetcher
	)

	if project.System == domain.SystemTodoist {
		ed, fetcher, err := taskEditor(ctx, app)
		if err != nil {
			return err
		}
		task, err := writeback.CreateTask(ctx, ed, provider.NewTask{
			Content:     createTitle,
			Description: createDescription,
			ProjectID:   project.ProjectID,
			DueString:   createDue,
			Labels:      splitList(createLabels),
		}, priority)
		if err != nil {
			return err
		}
		item, f = normalize.Todoist(task), fetcher
	} else {
		ed, err := issueEditor(ctx, app, project.System)
		if err != nil {
			return err
		}
		names := splitList(createLabels)
		if priority != "" {
			names = append(names, labels.PriorityLabel(domain.Priority(priority)))
		}
		if _, err := writeback.EnsureLabels(ctx, ed, project.Repo, names); err != nil {
			return err
		}
		raw, err := writeback.CreateIssue(ctx, ed, project.Repo, provider.NewIssue{
			Title:  createTitle,
			Body:   createDescription,
			Labels: names,
		})
		if err != nil {
			return err
		}
		item, err = normalize.Item(raw, normalize.Source{Repo: project.Repo})
		if err != nil {
			return err
		}
		f = ed
	}

	if createJSON {
		if err := render.NewRenderer(cmd.OutOrStdout(), render.Options{}).RenderJSON(&item); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s: %s\n", item.System, item.ID, item.Title)
		if item.URL != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", item.URL)
		}
	}

	_, err = refresh(ctx, app, f, project.Scope(), item.ID)
	return err
}
