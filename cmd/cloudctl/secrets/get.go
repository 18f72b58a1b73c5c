package secretscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
)

const getShortDesc string = "Show the metadata of a secret"

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: getShortDesc,
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

			secret, err := client.Secrets.FindByName(session.Context(cmd), org, project, args[0])
			if err != nil {
				return err
			}

			if s.JSON {
				return s.PrintJSON(secret)
			}
			printSecretLine(s, secret)
			return nil
		},
	}
}
