package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --publish
// on both "cloudctl requests progress" and "cloudctl builds logs").
type Flag struct {
	// Name is the long flag name (e.g. "api-url").
	Name string

	// Shorthand is the one-letter short flag (e.g. "n"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "api.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string

	// Persistent registers the flag on the command and all of its children.
	Persistent bool
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPIURL    = "api-url"
	FlagOrg       = "org"
	FlagProject   = "project"
	FlagNamespace = "namespace"
	FlagRateLimit = "rate-limit"
	FlagLogJSON   = "log-json"
	FlagReadSize  = "read-size"
	FlagPublish   = "publish"
	FlagBrokers   = "brokers"
	FlagTopic     = "topic"
)

// Registry holds every flag that maps onto a config key.
var Registry = FlagSet{
	FlagAPIURL: {
		Name:        "api-url",
		ViperKey:    "api.url",
		Description: "Cloud API base URL",
		Persistent:  true,
	},
	FlagOrg: {
		Name:        "org",
		ViperKey:    "api.organization_id",
		Description: "Organization id to scope requests to",
		Persistent:  true,
	},
	FlagProject: {
		Name:        "project",
		ViperKey:    "api.project_id",
		Description: "Project id to scope requests to",
		Persistent:  true,
	},
	FlagNamespace: {
		Name:        "namespace",
		Shorthand:   "n",
		ViperKey:    "api.namespace",
		Description: "Application namespace",
		Persistent:  true,
	},
	FlagRateLimit: {
		Name:        "rate-limit",
		ViperKey:    "api.rate_limit",
		Description: "Maximum API requests per second (0 disables pacing)",
		Persistent:  true,
	},
	FlagLogJSON: {
		Name:        "log-json",
		ViperKey:    "log.json",
		Description: "Write logs as JSON",
		Persistent:  true,
	},
	FlagReadSize: {
		Name:        "read-size",
		ViperKey:    "stream.read_size",
		Description: "Bytes requested per read from event streams",
	},
	FlagPublish: {
		Name:        "publish",
		ViperKey:    "publish.enabled",
		Description: "Publish streamed events to Kafka",
	},
	FlagBrokers: {
		Name:        "brokers",
		ViperKey:    "publish.brokers",
		Description: "Kafka broker addresses",
	},
	FlagTopic: {
		Name:        "topic",
		ViperKey:    "publish.topic",
		Description: "Kafka topic for published events",
	},
}

func flagsFor(cmd *cobra.Command, def Flag) *pflag.FlagSet {
	if def.Persistent {
		return cmd.PersistentFlags()
	}
	return cmd.Flags()
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	flagsFor(cmd, def).StringVarP(target, def.Name, def.Shorthand, defaultsViper().GetString(def.ViperKey), def.Description)
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	flagsFor(cmd, def).IntVarP(target, def.Name, def.Shorthand, defaultsViper().GetInt(def.ViperKey), def.Description)
}

// AddFloat64Flag registers a float64 flag on cmd from the given FlagSet.
func AddFloat64Flag(cmd *cobra.Command, fs FlagSet, key string, target *float64) {
	def, ok := fs[key]
	if !ok {
		return
	}

	flagsFor(cmd, def).Float64VarP(target, def.Name, def.Shorthand, defaultsViper().GetFloat64(def.ViperKey), def.Description)
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	flagsFor(cmd, def).BoolVarP(target, def.Name, def.Shorthand, defaultsViper().GetBool(def.ViperKey), def.Description)
}

// AddStringSliceFlag registers a comma separated string list flag on cmd
// from the given FlagSet.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, key string, target *[]string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	flagsFor(cmd, def).StringSliceVarP(target, def.Name, def.Shorthand, defaultsViper().GetStringSlice(def.ViperKey), def.Description)
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
// Inherited persistent flags are found once cobra has parsed the command line.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultsViper returns a viper holding only the values from NewDefaultConfig.
func defaultsViper() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
