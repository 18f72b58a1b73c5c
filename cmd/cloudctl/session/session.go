// Package session resolves the configuration, logger, credentials and SDK
// shared by every cloudctl command.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/cloud"
	"github.com/papercomputeco/cloudctl/pkg/config"
	"github.com/papercomputeco/cloudctl/pkg/credentials"
	"github.com/papercomputeco/cloudctl/pkg/eventstream"
	"github.com/papercomputeco/cloudctl/pkg/eventstream/kafka"
	"github.com/papercomputeco/cloudctl/pkg/eventstream/nop"
	"github.com/papercomputeco/cloudctl/pkg/eventstream/worker"
	"github.com/papercomputeco/cloudctl/pkg/logger"
	"github.com/papercomputeco/cloudctl/pkg/sdk"
	"github.com/papercomputeco/cloudctl/pkg/sse"
)

// ErrNoScope is returned by Scope when the organization or project is unset.
var ErrNoScope = errors.New("organization and project are required")

// PersistentFlagKeys are the registry flags declared on the root command.
var PersistentFlagKeys = []string{
	config.FlagAPIURL,
	config.FlagOrg,
	config.FlagProject,
	config.FlagNamespace,
	config.FlagRateLimit,
	config.FlagLogJSON,
}

// Session is the resolved environment of one command invocation.
type Session struct {
	Config    *config.Config
	ConfigDir string
	Profile   string
	JSON      bool
	Logger    *slog.Logger
	Out       io.Writer
}

// Load resolves defaults, config.toml, CLOUDCTL_* variables and the flags of
// cmd named by flagKeys, in increasing precedence.
func Load(cmd *cobra.Command, flagKeys ...string) (*Session, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")
	jsonOut, _ := cmd.Flags().GetBool("json")
	profile, _ := cmd.Flags().GetString("profile")
	logFile, _ := cmd.Flags().GetString("log-file")
	noColor, _ := cmd.Flags().GetBool("no-color")

	if noColor || os.Getenv("NO_COLOR") != "" {
		cliui.DisableColor()
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}

	keys := append(append([]string{}, PersistentFlagKeys...), flagKeys...)
	config.BindRegisteredFlags(v, cmd, config.Registry, keys)
	cfg := config.FromViper(v)

	return &Session{
		Config:    cfg,
		ConfigDir: configDir,
		Profile:   profile,
		JSON:      jsonOut,
		Logger:    newLogger(cmd.ErrOrStderr(), logFile, debug, cfg.Log.JSON),
		Out:       cmd.OutOrStdout(),
	}, nil
}

// newLogger picks the pretty handler when w is a terminal. When logFile is
// set, every record down to Debug is also appended to it as JSON.
func newLogger(w io.Writer, logFile string, debug, jsonLogs bool) *slog.Logger {
	pretty := false
	if f, ok := w.(*os.File); ok && !jsonLogs {
		pretty = term.IsTerminal(int(f.Fd()))
	}

	console := logger.New(
		logger.WithWriter(w),
		logger.WithDebug(debug),
		logger.WithPretty(pretty),
		logger.WithJSON(jsonLogs),
	)
	if logFile == "" {
		return console
	}

	return logger.Multi(console, logger.New(
		logger.WithWriter(logger.AppendFile(logFile)),
		logger.WithJSON(true),
		logger.WithDebug(true),
		logger.WithSource(true),
	))
}

// SDK builds an authenticated SDK for the configured API.
func (s *Session) SDK() (*sdk.SDK, error) {
	creds, err := credentials.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	token, source, err := creds.ResolveToken(s.Profile)
	if err != nil {
		return nil, fmt.Errorf("%w\n\nRun 'cloudctl auth login' or set %s", err, credentials.TokenEnvVar)
	}
	s.Logger.Debug("using api token", "source", source, "profile", s.Profile)

	opts := []cloud.Option{
		cloud.WithToken(token),
		cloud.WithScope(s.Config.API.OrganizationID, s.Config.API.ProjectID),
		cloud.WithLogger(s.Logger),
	}
	if s.Config.API.RateLimit > 0 {
		opts = append(opts, cloud.WithRateLimit(s.Config.API.RateLimit, 1))
	}

	return sdk.New(s.Config.API.URL, opts...)
}

// Scope returns the configured organization and project ids.
func (s *Session) Scope() (string, string, error) {
	org, project := s.Config.API.OrganizationID, s.Config.API.ProjectID
	if org == "" || project == "" {
		return "", "", fmt.Errorf("%w: pass --org and --project or run 'cloudctl config set api.organization_id <id>'", ErrNoScope)
	}
	return org, project, nil
}

// Namespace returns the configured application namespace.
func (s *Session) Namespace() string {
	return s.Config.API.Namespace
}

// StreamOptions returns the stream options implied by the configuration,
// followed by extra.
func (s *Session) StreamOptions(extra ...sse.StreamOption) []sse.StreamOption {
	opts := []sse.StreamOption{sse.WithLogger(s.Logger)}
	if s.Config.Stream.ReadSize > 0 {
		opts = append(opts, sse.WithReadSize(s.Config.Stream.ReadSize))
	}
	return append(opts, extra...)
}

// Publisher starts a worker pool forwarding events to Kafka when publishing
// is enabled, or discarding them otherwise. Callers must Close it.
func (s *Session) Publisher() (*worker.Pool, error) {
	var pub eventstream.Publisher = nop.NewPublisher()
	if s.Config.Publish.Enabled {
		kp, err := kafka.NewPublisher(kafka.Config{
			Brokers: s.Config.Publish.Brokers,
			Topic:   s.Config.Publish.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		s.Logger.Info("publishing events",
			"brokers", s.Config.Publish.Brokers,
			"topic", s.Config.Publish.Topic,
		)
		pub = kp
	}

	return worker.NewPool(&worker.Config{
		Publisher: pub,
		Logger:    s.Logger,
	})
}

// Forward wraps payload in a StreamEvent and queues it on pool. Events that
// cannot be built are logged and skipped.
func (s *Session) Forward(pool *worker.Pool, eventType string, source eventstream.EventSource, payload any) {
	event, err := eventstream.NewStreamEvent(eventType, source, payload)
	if err != nil {
		s.Logger.Warn("building stream event", "type", eventType, "error", err)
		return
	}
	pool.Enqueue(event)
}

// Source returns the event source fields shared by everything this
// session publishes.
func (s *Session) Source() eventstream.EventSource {
	return eventstream.EventSource{
		OrganizationID: s.Config.API.OrganizationID,
		ProjectID:      s.Config.API.ProjectID,
		Namespace:      s.Config.API.Namespace,
	}
}

// PrintJSON writes v as indented JSON.
func (s *Session) PrintJSON(v any) error {
	enc := json.NewEncoder(s.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Printf writes formatted output.
func (s *Session) Printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Context returns the command context, or a background context when the
// command was executed without one.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
