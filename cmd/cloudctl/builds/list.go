package buildscmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/images"
)

const listLongDesc string = `List image builds.

Results are page numbered and can be filtered by status, application,
image and function.

Examples:
  cloudctl builds list
  cloudctl builds list --status failed --app summarize
  cloudctl builds list --page 2 --page-size 50`

const listShortDesc string = "List image builds"

func newListCmd() *cobra.Command {
	opts := images.ListBuildsOptions{}
	var status string

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

			opts.Status = images.BuildStatus(status)
			return runList(cmd, s, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page number, starting at 1")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Builds per page")
	cmd.Flags().StringVar(&status, "status", "", "Only builds with this status")
	cmd.Flags().StringVar(&opts.ApplicationName, "app", "", "Only builds of this application")
	cmd.Flags().StringVar(&opts.ImageName, "image", "", "Only builds of this image")
	cmd.Flags().StringVar(&opts.FunctionName, "function", "", "Only builds of this function")

	return cmd
}

func runList(cmd *cobra.Command, s *session.Session, opts images.ListBuildsOptions) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	page, err := client.Images.ListBuilds(session.Context(cmd), opts)
	if err != nil {
		return err
	}

	if s.JSON {
		return s.PrintJSON(page)
	}

	if len(page.Items) == 0 {
		s.Printf("No builds found.\n")
		return nil
	}

	s.Printf("\n  %s\n\n", cliui.HeaderStyle.Render("Builds"))
	for _, b := range page.Items {
		s.Printf("  %s  %-24s %s  %s\n",
			cliui.HashStyle.Render(b.PublicID),
			cliui.NameStyle.Render(b.Name),
			cliui.StatusStyle(string(b.Status)).Render(string(b.Status)),
			cliui.DimStyle.Render(b.CreationTime),
		)
		if len(b.Tags) > 0 {
			s.Printf("  %s\n", cliui.DimStyle.Render("tags: "+strings.Join(b.Tags, ", ")))
		}
	}

	s.Printf("\n  %s\n\n", cliui.DimStyle.Render(pageSummary(page)))
	return nil
}

func pageSummary(page *images.Page[images.BuildListItem]) string {
	return fmt.Sprintf("page %d of %d, %d builds", page.Page, page.TotalPages, page.TotalItems)
}
