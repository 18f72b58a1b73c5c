// Package configcmder provides the config command for managing persistent
// cloudctl configuration stored in the .cloudctl/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/config"
)

const configLongDesc string = `Manage persistent cloudctl configuration.

Configuration is stored as config.toml in the .cloudctl/ directory and
provides default values for command flags. CLOUDCTL_* environment variables
override the file, and CLI flags override both.

Keys use dotted notation matching the TOML section structure:
  api.url, api.organization_id, api.project_id, api.namespace, api.rate_limit,
  stream.read_size,
  publish.enabled, publish.brokers, publish.topic,
  log.json

Use subcommands to get, set, or list configuration values:
  cloudctl config set <key> <value>    Set a configuration value
  cloudctl config get <key>            Get a configuration value
  cloudctl config list                 List all configuration values

Examples:
  cloudctl config set api.organization_id org_123
  cloudctl config set publish.brokers kafka-1:9092,kafka-2:9092
  cloudctl config get api.url
  cloudctl config list`

const configShortDesc string = "Manage persistent cloudctl configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}
