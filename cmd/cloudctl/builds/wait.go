package buildscmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/images"
)

const waitLongDesc string = `Wait for a build to finish.

The build is polled with exponential backoff until it succeeds, fails or is
canceled. The command exits non-zero unless the build succeeded.

Examples:
  cloudctl builds wait <build-id>
  cloudctl builds wait <build-id> --timeout 45m --interval 2s`

const waitShortDesc string = "Wait for a build to finish"

func newWaitCmd() *cobra.Command {
	var (
		timeout     time.Duration
		interval    time.Duration
		maxInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait <build-id>",
		Short: waitShortDesc,
		Long:  waitLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}

			opts := images.WaitOptions{
				Interval:    interval,
				MaxInterval: maxInterval,
				MaxElapsed:  timeout,
			}
			return runWait(cmd, s, args[0], opts)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Give up after this long")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "First delay between polls")
	cmd.Flags().DurationVar(&maxInterval, "max-interval", 10*time.Second, "Longest delay between polls")

	return cmd
}

func runWait(cmd *cobra.Command, s *session.Session, buildID string, opts images.WaitOptions) error {
	client, err := s.SDK()
	if err != nil {
		return err
	}

	var last images.BuildStatus
	opts.OnPoll = func(info *images.BuildInfo) {
		if info.Status != last {
			s.Logger.Debug("build status", "build_id", buildID, "status", info.Status)
			last = info.Status
		}
	}

	var info *images.BuildInfo
	wait := func() error {
		var err error
		info, err = client.Images.WaitForBuild(session.Context(cmd), buildID, opts)
		return err
	}

	if s.JSON {
		err = wait()
		if info != nil {
			if perr := s.PrintJSON(info); perr != nil {
				return perr
			}
		}
		return err
	}

	err = cliui.Step(s.Out, fmt.Sprintf("Waiting for build %s", buildID), wait)
	if info != nil {
		printBuild(s, info)
	}
	return err
}
