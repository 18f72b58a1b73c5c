package appscmder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
)

const deployLongDesc string = `Create or replace an application.

The manifest is the JSON application description printed by
"cloudctl apps get --json". The code is the zipped application source.

Examples:
  cloudctl apps deploy --manifest app.json --code code.zip`

const deployShortDesc string = "Create or replace an application"

func newDeployCmd() *cobra.Command {
	var (
		manifestPath string
		codePath     string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: deployShortDesc,
		Long:  deployLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}
			return runDeploy(cmd, s, manifestPath, codePath)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to the application manifest JSON")
	cmd.Flags().StringVar(&codePath, "code", "", "Path to the zipped application code")
	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

func runDeploy(cmd *cobra.Command, s *session.Session, manifestPath, codePath string) error {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	app := &applications.Application{}
	if err := json.Unmarshal(data, app); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}
	if app.Name == "" {
		return fmt.Errorf("manifest %s has no application name", manifestPath)
	}

	code, err := os.Open(codePath)
	if err != nil {
		return fmt.Errorf("opening code archive: %w", err)
	}
	defer code.Close()

	client, err := s.SDK()
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Deploying %s to %s", app.Name, s.Namespace())
	return cliui.Step(s.Out, msg, func() error {
		return client.Applications.Upsert(session.Context(cmd), s.Namespace(), app, code)
	})
}
