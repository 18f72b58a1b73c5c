package appscmder

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
	"github.com/papercomputeco/cloudctl/pkg/utils"
)

const listLongDesc string = `List the applications in the namespace.

Results are cursor paginated. Pass the printed cursor back with --cursor
to fetch the next page.

Examples:
  cloudctl apps list
  cloudctl apps list --limit 10 --cursor <cursor>
  cloudctl apps list --json`

const listShortDesc string = "List applications"

func newListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}
			return runList(cmd, s, applications.ListOptions{Limit: limit, Cursor: cursor})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of applications to return")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor returned by a previous page")

	return cmd
}

func runList(cmd *cobra.Command, s *session.Session, opts applications.ListOptions) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	list, err := client.Applications.List(session.Context(cmd), s.Namespace(), opts)
	if err != nil {
		return err
	}

	if s.JSON {
		return s.PrintJSON(list)
	}

	if len(list.Applications) == 0 {
		s.Printf("No applications in namespace %s.\n", cliui.NameStyle.Render(s.Namespace()))
		return nil
	}

	s.Printf("\n  %s %s\n\n", cliui.HeaderStyle.Render("Applications in"), cliui.NameStyle.Render(s.Namespace()))
	for _, app := range list.Applications {
		state := stateOf(&app)
		s.Printf("  %-24s %-10s %s  %s\n",
			cliui.NameStyle.Render(app.Name),
			cliui.DimStyle.Render(app.Version),
			cliui.StatusStyle(strings.SplitN(state, ":", 2)[0]).Render(state),
			utils.Truncate(app.Description, 60),
		)
		if app.CreatedAt != nil {
			s.Printf("  %s\n", cliui.DimStyle.Render("created "+formatMillis(*app.CreatedAt)))
		}
	}

	if list.Cursor != nil && *list.Cursor != "" {
		s.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Next page:"), cliui.DimStyle.Render("--cursor "+*list.Cursor))
	}
	s.Printf("\n")
	return nil
}

// formatMillis renders a unix millisecond timestamp.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func stateOf(app *applications.Application) string {
	if app.State == nil {
		return "active"
	}
	return app.State.String()
}
