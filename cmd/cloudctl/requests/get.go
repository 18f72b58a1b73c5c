package requestscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
)

const getShortDesc string = "Show a request and its function runs"

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <application> <request-id>",
		Short: getShortDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			client, err := s.SDK()
			if err != nil {
				return err
			}

			req, err := client.Applications.GetRequest(session.Context(cmd), s.Namespace(), args[0], args[1])
			if err != nil {
				return err
			}

			if s.JSON {
				return s.PrintJSON(req)
			}
			printRequest(s, req)
			return nil
		},
	}
}

func printRequest(s *session.Session, req *applications.Request) {
	outcome := applications.RequestOutcome{}
	if req.Outcome != nil {
		outcome = *req.Outcome
	}

	s.Printf("\n  %s %s\n\n", cliui.HeaderStyle.Render("Request"), cliui.HashStyle.Render(req.ID))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Version:"), cliui.ValueStyle.Render(req.ApplicationVersion))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Created:"), cliui.ValueStyle.Render(formatMillis(req.CreatedAt)))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Outcome:"), cliui.StatusStyle(outcome.Status).Render(outcome.String()))
	if req.FailureReason != "" {
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Reason: "), cliui.ErrorStyle.Render(req.FailureReason))
	}
	if req.RequestError != nil {
		s.Printf("  %s  %s: %s\n",
			cliui.KeyStyle.Render("Error:  "),
			cliui.NameStyle.Render(req.RequestError.FunctionName),
			cliui.ErrorStyle.Render(req.RequestError.Message),
		)
	}

	if len(req.FunctionRuns) > 0 {
		s.Printf("\n  %s\n", cliui.HeaderStyle.Render("Function runs"))
		for _, run := range req.FunctionRuns {
			status := run.Status
			if run.Outcome != "" {
				status = run.Outcome
			}
			s.Printf("  %-24s %s  %s\n",
				cliui.NameStyle.Render(run.Name),
				cliui.StatusStyle(status).Render(status),
				cliui.DimStyle.Render(run.ID),
			)
		}
	}
	s.Printf("\n")
}
