package requestscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
)

const listShortDesc string = "List the requests of an application"

func newListCmd() *cobra.Command {
	var (
		limit    int
		cursor   string
		backward bool
	)

	cmd := &cobra.Command{
		Use:   "list <application>",
		Short: listShortDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			opts := applications.ListOptions{Limit: limit, Cursor: cursor}
			if backward {
				opts.Direction = applications.Backward
			}
			return runList(cmd, s, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of requests to return")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor returned by a previous page")
	cmd.Flags().BoolVar(&backward, "backward", false, "Walk the cursor backward")

	return cmd
}

func runList(cmd *cobra.Command, s *session.Session, app string, opts applications.ListOptions) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	list, err := client.Applications.ListRequests(session.Context(cmd), s.Namespace(), app, opts)
	if err != nil {
		return err
	}

	if s.JSON {
		return s.PrintJSON(list)
	}

	if len(list.Requests) == 0 {
		s.Printf("No requests for %s.\n", cliui.NameStyle.Render(app))
		return nil
	}

	s.Printf("\n  %s %s\n\n", cliui.HeaderStyle.Render("Requests of"), cliui.NameStyle.Render(app))
	for _, r := range list.Requests {
		s.Printf("  %s  %s\n", cliui.HashStyle.Render(r.ID), cliui.DimStyle.Render(formatMillis(r.CreatedAt)))
	}

	if list.Cursor != nil && *list.Cursor != "" {
		s.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Next page:"), cliui.DimStyle.Render("--cursor "+*list.Cursor))
	}
	s.Printf("\n")
	return nil
}
