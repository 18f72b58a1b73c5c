package requestscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/dotdir"
)

const deleteShortDesc string = "Delete a request and its outputs"

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <application> <request-id>",
		Short: deleteShortDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			client, err := s.SDK()
			if err != nil {
				return err
			}

			app, requestID := args[0], args[1]
			if err := client.Applications.DeleteRequest(session.Context(cmd), s.Namespace(), app, requestID); err != nil {
				return err
			}

			key := dotdir.CursorKey(s.Namespace(), app, requestID)
			if err := dotdir.NewManager().ClearCursor(s.ConfigDir, key); err != nil {
				s.Logger.Warn("clearing progress cursor", "key", key, "error", err)
			}

			s.Printf("%s Deleted request %s\n", cliui.SuccessMark, cliui.HashStyle.Render(requestID))
			return nil
		},
	}
}
