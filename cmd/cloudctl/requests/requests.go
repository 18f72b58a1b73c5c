// Package requestscmder provides the requests command for inspecting
// application requests and following their progress.
package requestscmder

import (
	"time"

	"github.com/spf13/cobra"
)

const requestsLongDesc string = `Inspect the requests of an application.

Every invocation of an application creates a request. Requests carry the
function runs they spawned, their outcome and their output.

Examples:
  cloudctl requests list summarize
  cloudctl requests get summarize <request-id>
  cloudctl requests output summarize <request-id> -o result.json
  cloudctl requests progress summarize <request-id> --follow`

const requestsShortDesc string = "Inspect application requests"

func NewRequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"req"},
		Short:   requestsShortDesc,
		Long:    requestsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newOutputCmd())
	cmd.AddCommand(newProgressCmd())
	cmd.AddCommand(newCursorsCmd())

	return cmd
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
