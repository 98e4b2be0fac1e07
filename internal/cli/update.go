package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/labels"
	"github.com/lherron/todu/internal/normalize"
	"github.com/lherron/todu/internal/render"
	"github.com/lherron/todu/internal/writeback"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change the status or priority of an issue or task",
	Long: `Writes a status or priority change back to the source system and then
refreshes the cached copy.

Issues carry status and priority as status:* and priority:* labels; only the
families you change are replaced and missing labels are created. --close
sets status done and closes the issue as completed; --cancel sets status
canceled and closes it as not planned. Todoist tasks carry status as a label
and priority in the task's own priority field.

When only --issue is given, the system and repository are taken from the
cached item with that number.

Examples:
  todu update --system github --repo acme/api --issue 42 --status in-progress
  todu update --issue 42 --priority priority:high
  todu update --project api --issue 7 --close
  todu update --task-id 6Xq2 --cancel`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runUpdate),
}

var (
	updateSystem   string
	updateRepo     string
	updateProject  string
	updateIssue    int
	updateTaskID   string
	updateStatus   string
	updatePriority string
	updateClose    bool
	updateCancel   bool
	updateJSON     bool
)

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateSystem, "system", "", "System of the issue (github, forgejo)")
	updateCmd.Flags().StringVar(&updateRepo, "repo", "", "Repository in owner/name format")
	updateCmd.Flags().StringVarP(&updateProject, "project", "p", "", "Registered project nickname")
	updateCmd.Flags().IntVar(&updateIssue, "issue", 0, "Issue number")
	updateCmd.Flags().StringVar(&updateTaskID, "task-id", "", "Todoist task ID")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status")
	updateCmd.Flags().StringVar(&updatePriority, "priority", "", "New priority (high, medium, low or priority:<value>)")
	updateCmd.Flags().BoolVar(&updateClose, "close", false, "Mark done and close")
	updateCmd.Flags().BoolVar(&updateCancel, "cancel", false, "Mark canceled and close as not planned")
	updateCmd.Flags().BoolVar(&updateJSON, "json", false, "Output the updated item as JSON")
}

func runUpdate(app *appctx.App, cmd *cobra.Command, args []string) error {
	change := writeback.Change{
		Status:   domain.Status(updateStatus),
		Priority: domain.Priority(labels.ParsePriorityArg(updatePriority)),
		Close:    updateClose,
		Cancel:   updateCancel,
	}
	if err := change.Validate(); err != nil {
		return err
	}

	switch {
	case updateTaskID != "" && updateIssue != 0:
		return domain.Invalid("cannot specify both --issue and --task-id")
	case updateTaskID != "":
		if updateRepo != "" || updateProject != "" {
			return domain.Invalid("--task-id cannot be combined with --repo or --project")
		}
		return updateTask(app, cmd, change)
	case updateIssue != 0:
		return updateIssueCmd(app, cmd, change)
	default:
		return domain.Invalid("specify --issue or --task-id")
	}
}

func updateIssueCmd(app *appctx.App, cmd *cobra.Command, change writeback.Change) error {
	system, repo := updateSystem, updateRepo
	if updateProject != "" {
		p, err := projectScope(app, updateProject, system, repo, "")
		if err != nil {
			return err
		}
		system, repo = string(p.System), p.Repo
	}
	if system != "" {
		if err := domain.ValidateSystem(system); err != nil {
			return err
		}
	}
	if system == "" || repo == "" {
		cached, err := app.Store.FindByID(strconv.Itoa(updateIssue), domain.System(system))
		if err != nil {
			return err
		}
		system, repo = string(cached.System), cached.SystemData.Repo
	}

	ctx := commandContext(cmd)
	ed, err := issueEditor(ctx, app, domain.System(system))
	if err != nil {
		return err
	}

	raw, err := writeback.UpdateIssue(ctx, ed, repo, updateIssue, change)
	if err != nil {
		return err
	}
	item, err := normalize.Item(raw, normalize.Source{Repo: repo})
	if err != nil {
		return err
	}

	if err := printUpdated(cmd, &item, fmt.Sprintf("%s %s#%d", system, repo, updateIssue)); err != nil {
		return err
	}
	_, err = refresh(ctx, app, ed, repo, item.ID)
	return err
}

func updateTask(app *appctx.App, cmd *cobra.Command, change writeback.Change) error {
	if updateSystem != "" && updateSystem != string(domain.SystemTodoist) {
		return domain.Invalid("--task-id only applies to todoist")
	}

	ctx := commandContext(cmd)
	ed, f, err := taskEditor(ctx, app)
	if err != nil {
		return err
	}

	task, err := writeback.UpdateTask(ctx, ed, updateTaskID, change)
	if err != nil {
		return err
	}
	item := normalize.Todoist(task)

	if err := printUpdated(cmd, &item, "todoist task "+updateTaskID); err != nil {
		return err
	}
	_, err = refresh(ctx, app, f, task.ProjectID, item.ID)
	return err
}

func printUpdated(cmd *cobra.Command, item *domain.Item, target string) error {
	if updateJSON {
		return render.NewRenderer(cmd.OutOrStdout(), render.Options{}).RenderJSON(item)
	}

	parts := []string{"status=" + string(item.Status)}
	if item.Priority != "" {
		parts = append(parts, "priority="+string(item.Priority))
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s (%s)\n", target, item.Title, strings.Join(parts, ", "))
	return err
}
