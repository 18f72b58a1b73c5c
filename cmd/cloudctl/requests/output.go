package requestscmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
)

const outputLongDesc string = `Download the output of a request.

By default the final output of the request is written to stdout. Use
--function-call to fetch the output of a single function call instead,
and --check to only report whether the output is ready.

Examples:
  cloudctl requests output summarize <request-id>
  cloudctl requests output summarize <request-id> -o result.json
  cloudctl requests output summarize <request-id> --function-call <call-id>
  cloudctl requests output summarize <request-id> --check`

const outputShortDesc string = "Download the output of a request"

func newOutputCmd() *cobra.Command {
	var (
		outFile      string
		functionCall string
		check        bool
	)

	cmd := &cobra.Command{
		Use:   "output <application> <request-id>",
		Short: outputShortDesc,
		Long:  outputLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			if check {
				return runCheck(cmd, s, args[0], args[1])
			}
			return runOutput(cmd, s, args[0], args[1], functionCall, outFile)
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write the output to a file instead of stdout")
	cmd.Flags().StringVar(&functionCall, "function-call", "", "Download the output of one function call")
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether the output is available")

	return cmd
}

func runCheck(cmd *cobra.Command, s *session.Session, app, requestID string) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	ready, err := client.Applications.CheckRequestOutput(session.Context(cmd), s.Namespace(), app, requestID)
	if err != nil {
		return err
	}

	if s.JSON {
		return s.PrintJSON(map[string]bool{"ready": ready})
	}
	if ready {
		s.Printf("%s Output of %s is ready\n", cliui.SuccessMark, cliui.HashStyle.Render(requestID))
	} else {
		s.Printf("%s Output of %s is not ready yet\n", cliui.WarnStyle.Render("…"), cliui.HashStyle.Render(requestID))
	}
	return nil
}

func runOutput(cmd *cobra.Command, s *session.Session, app, requestID, functionCall, outFile string) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	ctx := session.Context(cmd)

	var out *applications.Output
	if functionCall != "" {
		out, err = client.Applications.DownloadFunctionOutput(ctx, s.Namespace(), app, requestID, functionCall)
	} else {
		out, err = client.Applications.DownloadRequestOutput(ctx, s.Namespace(), app, requestID)
	}
	if err != nil {
		return err
	}

	s.Logger.Debug("downloaded output", "bytes", len(out.Content), "content_type", out.ContentType)

	if outFile == "" {
		_, err := s.Out.Write(out.Content)
		return err
	}

	if err := os.WriteFile(outFile, out.Content, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote %d bytes to %s\n", cliui.SuccessMark, len(out.Content), outFile)
	return nil
}
