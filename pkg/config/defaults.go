package config

const (
	defaultAPIURL    = "https://api.papercompute.co"
	defaultNamespace = "default"

	defaultReadSize = 4096

	defaultPublishTopic = "cloudctl.events"
)

var defaultBrokers = []string{"localhost:9092"}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			URL:       defaultAPIURL,
			Namespace: defaultNamespace,
		},
		Stream: StreamConfig{
			ReadSize: defaultReadSize,
		},
		Publish: PublishConfig{
			Brokers: append([]string(nil), defaultBrokers...),
			Topic:   defaultPublishTopic,
		},
	}
}
