package appscmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
)

const invokeLongDesc string = `Invoke an application.

The request body is a JSON value given with --data, or read from --file.
Use "-" as the file to read stdin. Without either, the application is
invoked with null input.

The printed request id can be followed with "cloudctl requests progress".

Examples:
  cloudctl apps invoke summarize --data '{"url": "https://example.com"}'
  cloudctl apps invoke summarize --file input.json
  cat input.json | cloudctl apps invoke summarize --file -`

const invokeShortDesc string = "Invoke an application"

func newInvokeCmd() *cobra.Command {
	var (
		data string
		file string
	)

	cmd := &cobra.Command{
		Use:   "invoke <application>",
		Short: invokeShortDesc,
		Long:  invokeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			input, err := readInput(cmd.InOrStdin(), data, file)
			if err != nil {
				return err
			}
			return runInvoke(cmd, s, args[0], input)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	cmd.Flags().StringVar(&file, "file", "", "Read the JSON request body from a file, or - for stdin")
	cmd.MarkFlagsMutuallyExclusive("data", "file")

	return cmd
}

// readInput returns the request body as raw JSON. It returns nil when
// neither data nor file is set.
func readInput(stdin io.Reader, data, file string) (json.RawMessage, error) {
	var raw []byte
	switch {
	case data != "":
		raw = []byte(data)
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		raw = b
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		raw = b
	default:
		return nil, nil
	}

	if !json.Valid(raw) {
		return nil, errors.New("request body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

func runInvoke(cmd *cobra.Command, s *session.Session, name string, input json.RawMessage) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	var body any
	if input != nil {
		body = input
	}

	requestID, err := client.Applications.Invoke(session.Context(cmd), s.Namespace(), name, body)
	if err != nil {
		return err
	}

	if s.JSON {
		return s.PrintJSON(map[string]string{"request_id": requestID})
	}

	if requestID == "" {
		s.Printf("%s Invoked %s\n", cliui.SuccessMark, cliui.NameStyle.Render(name))
		return nil
	}

	s.Printf("%s Invoked %s: request %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(name),
		cliui.HashStyle.Render(requestID),
	)
	s.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("cloudctl requests progress %s %s --follow", name, requestID)))
	return nil
}
