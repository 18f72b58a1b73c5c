package buildscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
)

const cancelShortDesc string = "Request cancellation of a build"

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <build-id>",
		Short: cancelShortDesc,
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

			if err := client.Images.CancelBuild(session.Context(cmd), args[0]); err != nil {
				return err
			}

			s.Printf("%s Cancellation requested for build %s\n", cliui.SuccessMark, cliui.HashStyle.Render(args[0]))
			return nil
		},
	}
}
