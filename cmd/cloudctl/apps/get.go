package appscmder

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
)

const getLongDesc string = `Show an application manifest.

The description is rendered as markdown. Functions are listed with their
resources and the secrets they read.

Examples:
  cloudctl apps get summarize
  cloudctl apps get summarize --json`

const getShortDesc string = "Show an application"

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <application>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}
			return runGet(cmd, s, args[0])
		},
	}
}

func runGet(cmd *cobra.Command, s *session.Session, name string) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	app, err := client.Applications.Get(session.Context(cmd), s.Namespace(), name)
	if err != nil {
		return err
	}

	if s.JSON {
		return s.PrintJSON(app)
	}

	printApplication(s, app)
	return nil
}

func printApplication(s *session.Session, app *applications.Application) {
	state := stateOf(app)

	s.Printf("\n  %s %s\n\n", cliui.NameStyle.Render(app.Name), cliui.DimStyle.Render(app.Version))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Namespace: "), cliui.ValueStyle.Render(app.Namespace))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("State:     "), cliui.StatusStyle(strings.SplitN(state, ":", 2)[0]).Render(state))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Entrypoint:"), cliui.ValueStyle.Render(app.Entrypoint.FunctionName))
	if app.CreatedAt != nil {
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Created:   "), cliui.ValueStyle.Render(formatMillis(*app.CreatedAt)))
	}

	if len(app.Tags) > 0 {
		tags := make([]string, 0, len(app.Tags))
		for k, v := range app.Tags {
			tags = append(tags, k+"="+v)
		}
		sort.Strings(tags)
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Tags:      "), cliui.DimStyle.Render(strings.Join(tags, ", ")))
	}

	if app.Description != "" {
		rendered, err := cliui.RenderMarkdown(app.Description)
		if err != nil {
			s.Logger.Debug("rendering description", "error", err)
		}
		s.Printf("\n%s", rendered)
	}

	if len(app.Functions) == 0 {
		s.Printf("\n")
		return
	}

	names := make([]string, 0, len(app.Functions))
	for name := range app.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	s.Printf("\n  %s\n", cliui.HeaderStyle.Render("Functions"))
	for _, name := range names {
		fn := app.Functions[name]
		s.Printf("\n  %s\n", cliui.NameStyle.Render(name))
		s.Printf("    %s %g cpu, %d MB memory, %d MB disk\n",
			cliui.KeyStyle.Render("resources:"),
			fn.Resources.CPUs, fn.Resources.MemoryMB, fn.Resources.EphemeralDiskMB,
		)
		for _, gpu := range fn.Resources.GPUs {
			s.Printf("    %s %d x %s\n", cliui.KeyStyle.Render("gpu:      "), gpu.Count, gpu.Model)
		}
		if fn.TimeoutSec > 0 {
			s.Printf("    %s %ds\n", cliui.KeyStyle.Render("timeout:  "), fn.TimeoutSec)
		}
		if len(fn.SecretNames) > 0 {
			s.Printf("    %s %s\n", cliui.KeyStyle.Render("secrets:  "), strings.Join(fn.SecretNames, ", "))
		}
	}
	s.Printf("\n")
}
