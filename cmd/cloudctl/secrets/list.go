package secretscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/secrets"
)

const listShortDesc string = "List project secrets"

func newListCmd() *cobra.Command {
	opts := secrets.ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}
			return runList(cmd, s, opts)
		},
	}

	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Secrets per page")
	cmd.Flags().StringVar(&opts.Next, "next", "", "Cursor of the next page")
	cmd.Flags().StringVar(&opts.Prev, "prev", "", "Cursor of the previous page")
	cmd.MarkFlagsMutuallyExclusive("next", "prev")

	return cmd
}

func runList(cmd *cobra.Command, s *session.Session, opts secrets.ListOptions) error {
	org, project, err := s.Scope()
	if err != nil {
		return err
	}

	client, err := s.SDK()
	if err != nil {
		return err
	}

	list, err := client.Secrets.List(session.Context(cmd), org, project, opts)
	if err != nil {
		return err
	}

	if s.JSON {
		return s.PrintJSON(list)
	}

	if len(list.Items) == 0 {
		s.Printf("No secrets in project %s.\n", cliui.NameStyle.Render(project))
		return nil
	}

	s.Printf("\n  %s %s\n\n", cliui.HeaderStyle.Render("Secrets in"), cliui.NameStyle.Render(project))
	for _, secret := range list.Items {
		printSecretLine(s, &secret)
	}

	s.Printf("\n  %s %d\n", cliui.KeyStyle.Render("Total:"), list.Pagination.Total)
	if list.Pagination.Next != "" {
		s.Printf("  %s %s\n", cliui.KeyStyle.Render("Next page:"), cliui.DimStyle.Render("--next "+list.Pagination.Next))
	}
	s.Printf("\n")
	return nil
}

func printSecretLine(s *session.Session, secret *secrets.Secret) {
	s.Printf("  %-32s %s  %s\n",
		cliui.NameStyle.Render(secret.Name),
		cliui.HashStyle.Render(secret.ID),
		cliui.DimStyle.Render(secret.CreatedAt),
	)
}
