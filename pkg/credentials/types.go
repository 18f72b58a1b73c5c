package credentials

// Credentials represents the stored API tokens in credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Profiles map[string]ProfileCredential `toml:"profiles"`
}

// ProfileCredential holds the API token of a single profile.
type ProfileCredential struct {
	Token string `toml:"token"`
}
