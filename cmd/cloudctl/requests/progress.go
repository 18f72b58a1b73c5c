package requestscmder

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
	"github.com/papercomputeco/cloudctl/pkg/config"
	"github.com/papercomputeco/cloudctl/pkg/dotdir"
	"github.com/papercomputeco/cloudctl/pkg/eventstream"
	"github.com/papercomputeco/cloudctl/pkg/eventstream/worker"
	"github.com/papercomputeco/cloudctl/pkg/sse"
)

const progressLongDesc string = `Show the progress events of a request.

Without --follow, the recorded progress pages are fetched and printed.
With --resume, the page token is saved in the .cloudctl/ directory after
every page, so a later run continues after the last event shown. The saved
position is dropped once the request finishes.

With --follow, the live event stream is opened and events are printed as
they arrive until the request finishes. Malformed events are reported and
skipped.

With --publish, every event is also forwarded to Kafka as a
cloudctl.request.progress envelope.

Examples:
  cloudctl requests progress summarize <request-id>
  cloudctl requests progress summarize <request-id> --resume
  cloudctl requests progress summarize <request-id> --follow
  cloudctl requests progress summarize <request-id> -f --publish --brokers kafka:9092`

const progressShortDesc string = "Show or follow the progress of a request"

// ErrRequestFailed is returned when the followed request finished with a
// failure outcome.
var ErrRequestFailed = errors.New("request failed")

var progressFlags = []string{
	config.FlagReadSize,
	config.FlagPublish,
	config.FlagBrokers,
	config.FlagTopic,
}

type progressCommander struct {
	s      *session.Session
	app    string
	id     string
	follow bool
	resume bool

	pool   *worker.Pool
	source eventstream.EventSource
	enc    *json.Encoder
	shown  int
}

func newProgressCmd() *cobra.Command {
	var (
		follow   bool
		resume   bool
		readSize int
		publish  bool
		brokers  []string
		topic    string
	)

	cmd := &cobra.Command{
		Use:   "progress <application> <request-id>",
		Short: progressShortDesc,
		Long:  progressLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(cmd, progressFlags...)
			if err != nil {
				return err
			}

			pc := &progressCommander{
				s:      s,
				app:    args[0],
				id:     args[1],
				follow: follow,
				resume: resume,
			}
			return pc.run(cmd)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream events live until the request finishes")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue after the last page shown by a previous run")
	cmd.MarkFlagsMutuallyExclusive("follow", "resume")

	config.AddIntFlag(cmd, config.Registry, config.FlagReadSize, &readSize)
	config.AddBoolFlag(cmd, config.Registry, config.FlagPublish, &publish)
	config.AddStringSliceFlag(cmd, config.Registry, config.FlagBrokers, &brokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagTopic, &topic)

	return cmd
}

func (pc *progressCommander) run(cmd *cobra.Command) error {
	client, err := pc.s.SDK()
	if err != nil {
		return err
	}

	pc.pool, err = pc.s.Publisher()
	if err != nil {
		return err
	}
	defer func() {
		if err := pc.pool.Close(); err != nil {
			pc.s.Logger.Warn("closing publisher", "error", err)
		}
		stats := pc.pool.Stats()
		pc.s.Logger.Debug("publisher stats",
			"published", stats.Published,
			"failed", stats.Failed,
			"dropped", stats.Dropped,
		)
	}()

	pc.source = pc.s.Source()
	pc.source.Application = pc.app
	pc.source.RequestID = pc.id

	if pc.s.JSON {
		pc.enc = json.NewEncoder(pc.s.Out)
	}

	if pc.follow {
		return pc.stream(cmd, client.Applications)
	}
	return pc.poll(cmd, client.Applications)
}

// stream follows the live feed until a terminal event or the end of the
// stream.
func (pc *progressCommander) stream(cmd *cobra.Command, client *applications.Client) error {
	ctx := session.Context(cmd)

	stream, err := client.StreamProgress(ctx, pc.s.Namespace(), pc.app, pc.id, pc.s.StreamOptions()...)
	if err != nil {
		return err
	}
	defer stream.Close()

	for event, err := range stream.All(ctx) {
		if err != nil {
			var decodeErr *sse.DecodeError
			if errors.As(err, &decodeErr) {
				pc.s.Logger.Warn("skipping malformed progress event", "error", err)
				continue
			}
			return err
		}

		if err := pc.emit(event); err != nil {
			return err
		}
		if event.IsTerminal() {
			return finished(event)
		}
	}

	pc.s.Logger.Debug("progress stream closed before the request finished", "events", pc.shown)
	return nil
}

// poll walks the recorded progress pages, saving the position after each
// page when resuming.
func (pc *progressCommander) poll(cmd *cobra.Command, client *applications.Client) error {
	ctx := session.Context(cmd)
	ddm := dotdir.NewManager()
	key := dotdir.CursorKey(pc.s.Namespace(), pc.app, pc.id)

	cursor := &dotdir.ProgressCursor{
		Namespace:   pc.s.Namespace(),
		Application: pc.app,
		RequestID:   pc.id,
	}
	if pc.resume {
		saved, err := ddm.LoadCursor(pc.s.ConfigDir, key)
		if err != nil {
			return fmt.Errorf("loading progress cursor: %w", err)
		}
		if saved != nil {
			cursor = saved
			pc.s.Logger.Debug("resuming progress", "seen", saved.Seen, "next_token", saved.NextToken)
		}
	}

	for {
		page, err := client.ProgressUpdates(ctx, pc.s.Namespace(), pc.app, pc.id, cursor.NextToken)
		if err != nil {
			return err
		}

		for _, event := range page.Updates {
			if err := pc.emit(event); err != nil {
				return err
			}
			cursor.Seen++

			if event.IsTerminal() {
				if pc.resume {
					if err := ddm.ClearCursor(pc.s.ConfigDir, key); err != nil {
						pc.s.Logger.Warn("clearing progress cursor", "error", err)
					}
				}
				return finished(event)
			}
		}

		if page.NextToken != nil && *page.NextToken != "" {
			cursor.NextToken = *page.NextToken
		}
		if pc.resume {
			if err := ddm.SaveCursor(pc.s.ConfigDir, cursor); err != nil {
				return fmt.Errorf("saving progress cursor: %w", err)
			}
		}

		if page.NextToken == nil || *page.NextToken == "" || len(page.Updates) == 0 {
			if pc.shown == 0 && !pc.s.JSON {
				pc.s.Printf("%s\n", cliui.DimStyle.Render("No new progress events."))
			}
			return nil
		}
	}
}

func (pc *progressCommander) emit(event applications.RequestStateChangeEvent) error {
	pc.shown++
	pc.s.Forward(pc.pool, eventstream.EventTypeRequestProgress, pc.source, event)

	if pc.enc != nil {
		return pc.enc.Encode(event)
	}

	stamp := "--:--:--"
	if ts := event.Metadata().CreatedAt; ts != nil {
		stamp = ts.Local().Format("15:04:05")
	}

	line := event.Describe()
	if event.IsTerminal() {
		line = cliui.StatusStyle(event.RequestFinished.Outcome.Status).Render(line)
	}
	pc.s.Printf("  %s  %s\n", cliui.DimStyle.Render(stamp), line)
	return nil
}

// finished maps the terminal event to the command result.
func finished(event applications.RequestStateChangeEvent) error {
	outcome := event.RequestFinished.Outcome
	if outcome.Status == applications.OutcomeFailure {
		return fmt.Errorf("%w: %s", ErrRequestFailed, outcome.String())
	}
	return nil
}
