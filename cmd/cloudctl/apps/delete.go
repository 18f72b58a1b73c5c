package appscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
)

const deleteShortDesc string = "Delete an application"

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <application>",
		Short: deleteShortDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			client, err := s.SDK()
			if err != nil {
				return err
			}

			if err := client.Applications.Delete(session.Context(cmd), s.Namespace(), args[0]); err != nil {
				return err
			}

			s.Printf("%s Deleted application %s\n", cliui.SuccessMark, cliui.NameStyle.Render(args[0]))
			return nil
		},
	}
}
