package secretscmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/secrets"
)

const setLongDesc string = `Create or replace secrets.

Each argument is NAME=VALUE. Everything after the first "=" is the value,
so values may themselves contain "=".

Examples:
  cloudctl secrets set OPENAI_API_KEY=sk-...
  cloudctl secrets set DB_URL='postgres://u:p@host/db?sslmode=require' HF_TOKEN=hf_...`

const setShortDesc string = "Create or replace secrets"

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME=VALUE...",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseAssignments(args)
			if err != nil {
				return err
			}

			s, err := session.Load(cmd)
			if err != nil {
				return err
			}
			return runSet(cmd, s, items)
		},
	}
}

func parseAssignments(args []string) ([]secrets.UpsertSecret, error) {
	items := make([]secrets.UpsertSecret, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid secret %q: expected NAME=VALUE", arg)
		}
		items = append(items, secrets.UpsertSecret{Name: name, Value: value})
	}
	return items, nil
}

func runSet(cmd *cobra.Command, s *session.Session, items []secrets.UpsertSecret) error {
	org, project, err := s.Scope()
	if err != nil {
		return err
	}

	client, err := s.SDK()
	if err != nil {
		return err
	}

	stored, err := client.Secrets.Upsert(session.Context(cmd), org, project, items...)
	if err != nil {
		return err
	}

	if s.JSON {
		return s.PrintJSON(stored)
	}

	for _, secret := range stored {
		s.Printf("%s Stored secret %s %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(secret.Name),
			cliui.DimStyle.Render(secret.ID),
		)
	}
	return nil
}
