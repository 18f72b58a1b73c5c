package buildscmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/images"
	"github.com/papercomputeco/cloudctl/pkg/config"
	"github.com/papercomputeco/cloudctl/pkg/eventstream"
	"github.com/papercomputeco/cloudctl/pkg/sse"
)

const logsLongDesc string = `Stream the logs of a build.

Log lines are printed as they arrive until the build reaches a terminal
status or the server closes the stream. Malformed log frames are reported
and skipped.

With --raw, the undecoded event stream is also copied to a file. With
--publish, every log line is forwarded to Kafka as a cloudctl.build.log
envelope.

Examples:
  cloudctl builds logs <build-id>
  cloudctl builds logs <build-id> --raw build.sse
  cloudctl builds logs <build-id> --publish --topic builds`

const logsShortDesc string = "Stream the logs of a build"

var logsFlags = []string{
	config.FlagReadSize,
	config.FlagPublish,
	config.FlagBrokers,
	config.FlagTopic,
}

func newLogsCmd() *cobra.Command {
	var (
		rawPath  string
		readSize int
		publish  bool
		brokers  []string
		topic    string
	)

	cmd := &cobra.Command{
		Use:   "logs <build-id>",
		Short: logsShortDesc,
		Long:  logsLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd, logsFlags...)
			if err != nil {
				return err
			}
			return runLogs(cmd, s, args[0], rawPath)
		},
	}

	cmd.Flags().StringVar(&rawPath, "raw", "", "Also copy the raw event stream to this file")

	config.AddIntFlag(cmd, config.Registry, config.FlagReadSize, &readSize)
	config.AddBoolFlag(cmd, config.Registry, config.FlagPublish, &publish)
	config.AddStringSliceFlag(cmd, config.Registry, config.FlagBrokers, &brokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagTopic, &topic)

	return cmd
}

func runLogs(cmd *cobra.Command, s *session.Session, buildID, rawPath string) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	var extra []sse.StreamOption
	if rawPath != "" {
		raw, err := os.Create(rawPath)
		if err != nil {
			return fmt.Errorf("creating raw stream file: %w", err)
		}
		defer raw.Close()
		extra = append(extra, sse.WithTee(raw))
	}

	pool, err := s.Publisher()
	if err != nil {
		return err
	}
	defer func() {
		if err := pool.Close(); err != nil {
			s.Logger.Warn("closing publisher", "error", err)
		}
	}()

	source := s.Source()
	source.BuildID = buildID

	ctx := session.Context(cmd)
	stream, err := client.Images.StreamLogs(ctx, buildID, s.StreamOptions(extra...)...)
	if err != nil {
		return err
	}
	defer stream.Close()

	var enc *json.Encoder
	if s.JSON {
		enc = json.NewEncoder(s.Out)
	}

	for entry, err := range stream.All(ctx) {
		if err != nil {
			var decodeErr *sse.DecodeError
			if errors.As(err, &decodeErr) {
				s.Logger.Warn("skipping malformed log frame", "error", err)
				continue
			}
			return err
		}

		s.Forward(pool, eventstream.EventTypeBuildLog, source, entry)

		if enc != nil {
			if err := enc.Encode(entry); err != nil {
				return err
			}
		} else {
			printLogEntry(s, entry)
		}

		if images.BuildStatus(entry.BuildStatus).Terminal() {
			s.Logger.Debug("build reached terminal status", "status", entry.BuildStatus)
			return nil
		}
	}

	return nil
}

func printLogEntry(s *session.Session, entry images.LogEntry) {
	msg := entry.Message
	if entry.Stream == "stderr" {
		msg = cliui.WarnStyle.Render(msg)
	}
	s.Printf("%s %s\n", cliui.DimStyle.Render(entry.Timestamp), msg)
}
