package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/provider"
	"github.com/lherron/todu/internal/render"
	"github.com/lherron/todu/internal/writeback"
)

var commentCmd = &cobra.Command{
	Use:   "comment [file|-]",
	Short: "Add a comment to an issue or task",
	Long: `Posts a comment on an issue or a Todoist task.
Comment text can come from:
  - The -b/--body flag
  - A file path
  - stdin (use '-')

When only --issue is given, the system and repository are taken from the
cached item with that number.

Examples:
  todu comment --system github --repo acme/api --issue 42 --body "Fixed in main"
  todu comment --project api --issue 7 notes.md
  echo "Called the bank" | todu comment --task-id 6Xq2 -`,
	Args: cobra.MaximumNArgs(1),
	RunE: appctx.WithApp(appctx.CacheOnly(), runComment),
}

var (
	commentSystem  string
	commentRepo    string
	commentProject string
	commentIssue   int
	commentTaskID  string
	commentBody    string
	commentDryRun  bool
	commentJSON    bool
)

func init() {
	rootCmd.AddCommand(commentCmd)

	commentCmd.Flags().StringVar(&commentSystem, "system", "", "System of the item (github, forgejo, todoist)")
	commentCmd.Flags().StringVar(&commentRepo, "repo", "", "Repository in owner/name format")
	commentCmd.Flags().StringVarP(&commentProject, "project", "p", "", "Registered project nickname")
	commentCmd.Flags().IntVar(&commentIssue, "issue", 0, "Issue number")
	commentCmd.Flags().StringVar(&commentTaskID, "task-id", "", "Todoist task ID")
	commentCmd.Flags().StringVarP(&commentBody, "body", "b", "", "Comment text")
	commentCmd.Flags().BoolVar(&commentDryRun, "dry-run", false, "Preview without posting")
	commentCmd.Flags().BoolVar(&commentJSON, "json", false, "Output the posted comment as JSON")
}

func runComment(app *appctx.App, cmd *cobra.Command, args []string) error {
	body, err := commentText(cmd, args)
	if err != nil {
		return err
	}

	switch {
	case commentTaskID != "" && commentIssue != 0:
		return domain.Invalid("cannot specify both --issue and --task-id")
	case commentTaskID != "":
		if commentRepo != "" || commentProject != "" {
			return domain.Invalid("--task-id cannot be combined with --repo or --project")
		}
		if commentSystem != "" && commentSystem != string(domain.SystemTodoist) {
			return domain.Invalid("--task-id only applies to todoist")
		}
		return commentOnTask(app, cmd, body)
	case commentIssue != 0:
		return commentOnIssue(app, cmd, body)
	default:
		return domain.Invalid("specify --issue or --task-id")
	}
}

// commentText returns the trimmed comment body from --body, a file, or stdin
func commentText(cmd *cobra.Command, args []string) (string, error) {
	var body string
	switch {
	case commentBody != "" && len(args) > 0:
		return "", domain.Invalid("use either --body or a file argument, not both")
	case commentBody != "":
		body = commentBody
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		body = string(data)
	case len(args) == 1:
		data, err := os.ReadFile(expandPath(args[0]))
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		body = string(data)
	default:
		return "", domain.Invalid("comment body required: use --body, provide a file, or use stdin with '-'")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return "", domain.Invalid("comment body cannot be empty")
	}
	return body, nil
}

func commentOnIssue(app *appctx.App, cmd *cobra.Command, body string) error {
	system, repo := commentSystem, commentRepo
	if commentProject != "" {
		p, err := projectScope(app, commentProject, system, repo, "")
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
		cached, err := app.Store.FindByID(strconv.Itoa(commentIssue), domain.System(system))
		if err != nil {
			return err
		}
		system, repo = string(cached.System), cached.SystemData.Repo
	}

	target := fmt.Sprintf("%s %s#%d", system, repo, commentIssue)
	if commentDryRun {
		return printCommentPreview(cmd, target, body)
	}

	ctx := commandContext(cmd)
	ed, err := issueEditor(ctx, app, domain.System(system))
	if err != nil {
		return err
	}
	c, err := writeback.CommentOnIssue(ctx, ed, repo, commentIssue, body)
	if err != nil {
		return err
	}
	return printComment(cmd, c, target)
}

func commentOnTask(app *appctx.App, cmd *cobra.Command, body string) error {
	target := "todoist task " + commentTaskID
	if commentDryRun {
		return printCommentPreview(cmd, target, body)
	}

	ctx := commandContext(cmd)
	ed, _, err := taskEditor(ctx, app)
	if err != nil {
		return err
	}
	c, err := writeback.CommentOnTask(ctx, ed, commentTaskID, body)
	if err != nil {
		return err
	}
	return printComment(cmd, c, target)
}

func printCommentPreview(cmd *cobra.Command, target, body string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[DRY RUN] Would comment on %s:\n", target)
	_, err := fmt.Fprintf(out, "  Body: %s\n", body)
	return err
}

func printComment(cmd *cobra.Command, c *provider.Comment, target string) error {
	if commentJSON {
		return render.NewRenderer(cmd.OutOrStdout(), render.Options{}).RenderJSON(c)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Commented on %s (comment %s)\n", target, c.ID)
	if c.URL != "" {
		fmt.Fprintf(out, "  %s\n", c.URL)
	}
	return nil
}
