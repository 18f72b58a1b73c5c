package secretscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
)

const deleteShortDesc string = "Delete a secret by name"

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: deleteShortDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			org, project, err := s.Scope()
			if err != nil {
				return err
			}

			client, err := s.SDK()
			if err != nil {
				return err
			}

			ctx := session.Context(cmd)
			secret, err := client.Secrets.FindByName(ctx, org, project, args[0])
			if err != nil {
				return err
			}

			if err := client.Secrets.Delete(ctx, org, project, secret.ID); err != nil {
				return err
			}

			s.Printf("%s Deleted secret %s\n", cliui.SuccessMark, cliui.NameStyle.Render(secret.Name))
			return nil
		},
	}
}
