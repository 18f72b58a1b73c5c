// Package appscmder provides the apps command for managing deployed
// applications.
package appscmder

import (
	"github.com/spf13/cobra"
)

const appsLongDesc string = `Manage applications deployed to a namespace.

The namespace comes from --namespace, CLOUDCTL_API_NAMESPACE or the
api.namespace config key, and defaults to "default".

Examples:
  cloudctl apps list
  cloudctl apps get summarize
  cloudctl apps invoke summarize --data '{"url": "https://example.com"}'
  cloudctl apps deploy --manifest app.json --code code.zip
  cloudctl apps delete summarize`

const appsShortDesc string = "Manage deployed applications"

func NewAppsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"applications"},
		Short:   appsShortDesc,
		Long:    appsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newInvokeCmd())
	cmd.AddCommand(newDeployCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}
