// Package buildscmder provides the builds command for inspecting image
// builds and following their logs.
package buildscmder

import (
	"github.com/spf13/cobra"
)

const buildsLongDesc string = `Inspect image builds.

Builds turn application functions into container images. Their logs can be
streamed live and optionally forwarded to Kafka.

Examples:
  cloudctl builds list --status building
  cloudctl builds info <build-id>
  cloudctl builds logs <build-id> --raw build.sse
  cloudctl builds wait <build-id> --timeout 20m
  cloudctl builds cancel <build-id>`

const buildsShortDesc string = "Inspect image builds"

func NewBuildsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "builds",
		Short: buildsShortDesc,
		Long:  buildsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newCancelCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newWaitCmd())

	return cmd
}
