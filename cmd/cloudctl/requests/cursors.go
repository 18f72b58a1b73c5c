package requestscmder

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/dotdir"
)

const cursorsShortDesc string = "List saved progress resume points"

func newCursorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cursors",
		Short: cursorsShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			cursors, err := dotdir.NewManager().ListCursors(s.ConfigDir)
			if err != nil {
				return err
			}

			if s.JSON {
				return s.PrintJSON(cursors)
			}

			if len(cursors) == 0 {
				s.Printf("No saved progress cursors.\n")
				return nil
			}

			for _, c := range cursors {
				s.Printf("  %s  %s  %s\n",
					cliui.NameStyle.Render(c.Key()),
					cliui.KeyStyle.Render("seen"),
					cliui.ValueStyle.Render(strconv.Itoa(c.Seen)),
				)
			}
			return nil
		},
	}
}
