package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/cloudctl/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable read by InitViper.
const EnvPrefix = "CLOUDCTL"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the CLOUDCTL_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (CLOUDCTL_API_URL, CLOUDCTL_API_PROJECT_ID, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: CLOUDCTL_API_URL, CLOUDCTL_STREAM_READ_SIZE, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper builds a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			URL:            v.GetString("api.url"),
			OrganizationID: v.GetString("api.organization_id"),
			ProjectID:      v.GetString("api.project_id"),
			Namespace:      v.GetString("api.namespace"),
			RateLimit:      v.GetFloat64("api.rate_limit"),
		},
		Stream: StreamConfig{
			ReadSize: v.GetInt("stream.read_size"),
		},
		Publish: PublishConfig{
			Enabled: v.GetBool("publish.enabled"),
			Brokers: brokerList(v.GetStringSlice("publish.brokers")),
			Topic:   v.GetString("publish.topic"),
		},
		Log: LogConfig{
			JSON: v.GetBool("log.json"),
		},
	}
}

// brokerList flattens entries that arrive comma separated from the
// environment or a flag.
func brokerList(in []string) []string {
	return splitList(strings.Join(in, ","))
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// API
	v.SetDefault("api.url", d.API.URL)
	v.SetDefault("api.organization_id", d.API.OrganizationID)
	v.SetDefault("api.project_id", d.API.ProjectID)
	v.SetDefault("api.namespace", d.API.Namespace)
	v.SetDefault("api.rate_limit", d.API.RateLimit)

	// Stream
	v.SetDefault("stream.read_size", d.Stream.ReadSize)

	// Publish
	v.SetDefault("publish.enabled", d.Publish.Enabled)
	v.SetDefault("publish.brokers", d.Publish.Brokers)
	v.SetDefault("publish.topic", d.Publish.Topic)

	// Log
	v.SetDefault("log.json", d.Log.JSON)
}
