// Package cloudctlcmder is the root cloudctl command.
package cloudctlcmder

import (
	"github.com/spf13/cobra"

	appscmder "github.com/papercomputeco/cloudctl/cmd/cloudctl/apps"
	authcmder "github.com/papercomputeco/cloudctl/cmd/cloudctl/auth"
	buildscmder "github.com/papercomputeco/cloudctl/cmd/cloudctl/builds"
	configcmder "github.com/papercomputeco/cloudctl/cmd/cloudctl/config"
	requestscmder "github.com/papercomputeco/cloudctl/cmd/cloudctl/requests"
	secretscmder "github.com/papercomputeco/cloudctl/cmd/cloudctl/secrets"
	versioncmder "github.com/papercomputeco/cloudctl/cmd/version"
	"github.com/papercomputeco/cloudctl/pkg/config"
)

const cloudctlLongDesc string = `cloudctl manages applications, image builds and secrets on the cloud
platform.

Get started:
  cloudctl auth login                      Store an API token
  cloudctl config set api.project_id <id>  Pick a default project
  cloudctl apps list                       List deployed applications
  cloudctl requests progress <app> <id> -f Follow a request live`

const cloudctlShortDesc string = "cloudctl - cloud platform CLI"

func NewCloudctlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cloudctl",
		Short:         cloudctlShortDesc,
		Long:          cloudctlLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .cloudctl/ directory")
	cmd.PersistentFlags().String("profile", "", "Credentials profile (default \"default\")")
	cmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	cmd.PersistentFlags().String("log-file", "", "Also append debug logs as JSON to this file")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output (also honors NO_COLOR)")

	var (
		apiURL    string
		org       string
		project   string
		namespace string
		rateLimit float64
		logJSON   bool
	)
	config.AddStringFlag(cmd, config.Registry, config.FlagAPIURL, &apiURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagOrg, &org)
	config.AddStringFlag(cmd, config.Registry, config.FlagProject, &project)
	config.AddStringFlag(cmd, config.Registry, config.FlagNamespace, &namespace)
	config.AddFloat64Flag(cmd, config.Registry, config.FlagRateLimit, &rateLimit)
	config.AddBoolFlag(cmd, config.Registry, config.FlagLogJSON, &logJSON)

	// Add subcommands
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(appscmder.NewAppsCmd())
	cmd.AddCommand(requestscmder.NewRequestsCmd())
	cmd.AddCommand(buildscmder.NewBuildsCmd())
	cmd.AddCommand(secretscmder.NewSecretsCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
