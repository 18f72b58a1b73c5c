package buildscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/images"
)

const infoShortDesc string = "Show the state of a build"

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <build-id>",
		Short: infoShortDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			client, err := s.SDK()
			if err != nil {
				return err
			}

			info, err := client.Images.GetBuild(session.Context(cmd), args[0])
			if err != nil {
				return err
			}

			if s.JSON {
				return s.PrintJSON(info)
			}
			printBuild(s, info)
			return nil
		},
	}
}

func printBuild(s *session.Session, info *images.BuildInfo) {
	status := string(info.Status)

	s.Printf("\n  %s %s\n\n", cliui.HeaderStyle.Render("Build"), cliui.HashStyle.Render(info.ID))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Status: "), cliui.StatusStyle(status).Render(status))
	if info.ImageName != "" {
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Image:  "), cliui.NameStyle.Render(info.ImageName))
	}
	if info.ImageHash != "" {
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Hash:   "), cliui.HashStyle.Render(info.ImageHash))
	}
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Created:"), cliui.ValueStyle.Render(info.CreatedAt))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Updated:"), cliui.ValueStyle.Render(info.UpdatedAt))
	if info.FinishedAt != "" {
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Done:   "), cliui.ValueStyle.Render(info.FinishedAt))
	}
	if info.ErrorMessage != "" {
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Error:  "), cliui.ErrorStyle.Render(info.ErrorMessage))
	}
	s.Printf("\n")
}
