package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/provider"
	"github.com/lherron/todu/internal/render"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage registered projects",
	Long: `Registered projects map a short nickname to a repository or Todoist
project. sync-all syncs every registered project; --project accepts a
nickname wherever --system and --repo would otherwise be needed.

Nicknames are normalized to lower-case slugs.

Examples:
  todu projects list
  todu projects register api --system github --repo acme/api
  todu projects register home --system todoist --project-id 2203306141
  todu projects update api --nickname backend
  todu projects remove backend
  todu projects todoist`,
}

var projectsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered projects",
	Args:    cobra.NoArgs,
	RunE:    appctx.WithApp(appctx.CacheOnly(), runProjectsList),
}

var projectsRegisterCmd = &cobra.Command{
	Use:   "register <nickname>",
	Short: "Register a project under a nickname",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.CacheOnly(), runProjectsRegister),
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <nickname>",
	Short: "Change a registered project",
	Long: `Changes a registered project. Unspecified flags keep their current
values; --nickname renames the entry.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.CacheOnly(), runProjectsUpdate),
}

var projectsRemoveCmd = &cobra.Command{
	Use:     "remove <nickname>",
	Aliases: []string{"rm"},
	Short:   "Remove a registered project",
	Args:    cobra.ExactArgs(1),
	RunE:    appctx.WithApp(appctx.CacheOnly(), runProjectsRemove),
}

var projectsTodoistCmd = &cobra.Command{
	Use:   "todoist",
	Short: "List Todoist projects and their IDs",
	Long: `Lists the projects visible to TODOIST_TOKEN with the IDs that
'projects register --project-id' expects, and the nickname each is
registered under, if any.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.CacheOnly(), runProjectsTodoist),
}

// projectLister is the Todoist client's project listing call
type projectLister interface {
	ListProjects(ctx context.Context) ([]provider.TodoistProject, error)
}

var (
	projectsSystem    string
	projectsRepo      string
	projectsProjectID string
	projectsNickname  string
	projectsJSON      bool
)

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd, projectsRegisterCmd, projectsUpdateCmd, projectsRemoveCmd, projectsTodoistCmd)

	projectsListCmd.Flags().BoolVar(&projectsJSON, "json", false, "Output as JSON")
	projectsTodoistCmd.Flags().BoolVar(&projectsJSON, "json", false, "Output as JSON")

	for _, c := range []*cobra.Command{projectsRegisterCmd, projectsUpdateCmd} {
		c.Flags().StringVar(&projectsSystem, "system", "", "System (github, forgejo, todoist)")
		c.Flags().StringVar(&projectsRepo, "repo", "", "Repository in owner/name format")
		c.Flags().StringVar(&projectsProjectID, "project-id", "", "Todoist project ID")
	}
	projectsUpdateCmd.Flags().StringVar(&projectsNickname, "nickname", "", "Rename the project")
}

func runProjectsList(app *appctx.App, cmd *cobra.Command, args []string) error {
	reg, err := app.Registry()
	if err != nil {
		return err
	}
	entries := reg.Sorted()

	r := render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: render.FormatTable})
	if projectsJSON {
		return r.RenderJSON(entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No projects registered.")
		return err
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Nickname, string(e.System), e.Scope()}
	}
	return r.RenderTable([]string{"NICKNAME", "SYSTEM", "SCOPE"}, rows)
}

func runProjectsRegister(app *appctx.App, cmd *cobra.Command, args []string) error {
	reg, err := app.Registry()
	if err != nil {
		return err
	}
	p := domain.Project{
		System:    domain.System(projectsSystem),
		Repo:      projectsRepo,
		ProjectID: projectsProjectID,
	}
	nick, err := reg.Register(args[0], p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s: %s %s\n", nick, p.System, p.Scope())
	return err
}

func runProjectsUpdate(app *appctx.App, cmd *cobra.Command, args []string) error {
	reg, err := app.Registry()
	if err != nil {
		return err
	}
	current, err := reg.Get(args[0])
	if err != nil {
		return err
	}

	next := mergeProject(current, projectsSystem, projectsRepo, projectsProjectID)
	nick, err := reg.Update(args[0], projectsNickname, next)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s %s\n", nick, next.System, next.Scope())
	return err
}

// mergeProject overlays the non-empty flag values onto p. Switching system
// clears the scope field the new system does not use.
func mergeProject(p domain.Project, system, repo, projectID string) domain.Project {
	if system != "" && domain.System(system) != p.System {
		p.System = domain.System(system)
		p.Repo, p.ProjectID = "", ""
	}
	if repo != "" {
		p.Repo = repo
	}
	if projectID != "" {
		p.ProjectID = projectID
	}
	return p
}

func runProjectsRemove(app *appctx.App, cmd *cobra.Command, args []string) error {
	reg, err := app.Registry()
	if err != nil {
		return err
	}
	if err := reg.Remove(args[0]); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return err
}

func runProjectsTodoist(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	c, err := newClient(ctx, app.Config, domain.SystemTodoist)
	if err != nil {
		return err
	}
	lister, ok := c.(projectLister)
	if !ok {
		return fmt.Errorf("todoist client cannot list projects")
	}
	projects, err := lister.ListProjects(ctx)
	if err != nil {
		return err
	}

	reg, err := app.Registry()
	if err != nil {
		return err
	}
	registered := make(map[string]string)
	for _, e := range reg.Sorted() {
		if e.System == domain.SystemTodoist {
			registered[e.ProjectID] = e.Nickname
		}
	}

	r := render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: render.FormatTable})
	if projectsJSON {
		if projects == nil {
			projects = []provider.TodoistProject{}
		}
		return r.RenderJSON(projects)
	}
	if len(projects) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No Todoist projects found.")
		return err
	}

	rows := make([][]string, len(projects))
	for i, p := range projects {
		name := p.Name
		if p.InboxProject {
			name += " [INBOX]"
		}
		if p.IsFavorite {
			name += " ⭐"
		}
		rows[i] = []string{p.ID, name, registered[p.ID]}
	}
	return r.RenderTable([]string{"ID", "NAME", "REGISTERED AS"}, rows)
}
