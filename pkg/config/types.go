package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent cloudctl configuration stored as
// config.toml in the .cloudctl/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int           `toml:"version"`
	API     APIConfig     `toml:"api"`
	Stream  StreamConfig  `toml:"stream"`
	Publish PublishConfig `toml:"publish"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig holds the cloud API endpoint and the default request scope.
type APIConfig struct {
	URL            string  `toml:"url,omitempty"`
	OrganizationID string  `toml:"organization_id,omitempty"`
	ProjectID      string  `toml:"project_id,omitempty"`
	Namespace      string  `toml:"namespace,omitempty"`
	RateLimit      float64 `toml:"rate_limit,omitempty"`
}

// StreamConfig tunes reading of server-sent event streams.
type StreamConfig struct {
	ReadSize int `toml:"read_size,omitempty"`
}

// PublishConfig controls forwarding of streamed events to a Kafka topic.
type PublishConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	JSON bool `toml:"json,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return b, nil
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.url": {
		get: func(c *Config) string { return c.API.URL },
		set: func(c *Config, v string) error { c.API.URL = v; return nil },
	},
	"api.organization_id": {
		get: func(c *Config) string { return c.API.OrganizationID },
		set: func(c *Config, v string) error { c.API.OrganizationID = v; return nil },
	},
	"api.project_id": {
		get: func(c *Config) string { return c.API.ProjectID },
		set: func(c *Config, v string) error { c.API.ProjectID = v; return nil },
	},
	"api.namespace": {
		get: func(c *Config) string { return c.API.Namespace },
		set: func(c *Config, v string) error { c.API.Namespace = v; return nil },
	},
	"api.rate_limit": {
		get: func(c *Config) string {
			if c.API.RateLimit == 0 {
				return ""
			}
			return strconv.FormatFloat(c.API.RateLimit, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid value for api.rate_limit: %q", v)
			}
			c.API.RateLimit = f
			return nil
		},
	},
	"stream.read_size": {
		get: func(c *Config) string {
			if c.Stream.ReadSize == 0 {
				return ""
			}
			return strconv.Itoa(c.Stream.ReadSize)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid value for stream.read_size: %q", v)
			}
			c.Stream.ReadSize = n
			return nil
		},
	},
	"publish.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Publish.Enabled) },
		set: func(c *Config, v string) error {
			b, err := parseBool("publish.enabled", v)
			c.Publish.Enabled = b
			return err
		},
	},
	"publish.brokers": {
		get: func(c *Config) string { return strings.Join(c.Publish.Brokers, ",") },
		set: func(c *Config, v string) error { c.Publish.Brokers = splitList(v); return nil },
	},
	"publish.topic": {
		get: func(c *Config) string { return c.Publish.Topic },
		set: func(c *Config, v string) error { c.Publish.Topic = v; return nil },
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error {
			b, err := parseBool("log.json", v)
			c.Log.JSON = b
			return err
		},
	},
}

// splitList parses a comma separated list, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
