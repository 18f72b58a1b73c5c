// Package secretscmder provides the secrets command for managing project
// secrets.
package secretscmder

import (
	"github.com/spf13/cobra"
)

const secretsLongDesc string = `Manage the secrets of a project.

Secrets are scoped to an organization and project, taken from --org and
--project or the api.organization_id and api.project_id config keys.
Secret values are write-only: they can be set but never read back.

Examples:
  cloudctl secrets list
  cloudctl secrets set OPENAI_API_KEY=sk-... HF_TOKEN=hf_...
  cloudctl secrets get OPENAI_API_KEY
  cloudctl secrets delete HF_TOKEN`

const secretsShortDesc string = "Manage project secrets"

func NewSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: secretsShortDesc,
		Long:  secretsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}
