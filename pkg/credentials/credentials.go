// Package credentials stores cloud API tokens per profile in
// credentials.toml inside the .cloudctl/ directory.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/cloudctl/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// DefaultProfile is used when no profile is named.
	DefaultProfile = "default"

	// TokenEnvVar overrides any stored token.
	TokenEnvVar = "CLOUDCTL_API_TOKEN"
)

// ErrNoToken is returned by ResolveToken when neither the environment nor
// the profile provides a token.
var ErrNoToken = errors.New("no api token configured")

// Manager manages reading and writing credentials.toml in the .cloudctl/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .cloudctl/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:  currentVersion,
				Profiles: make(map[string]ProfileCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Profiles == nil {
		creds.Profiles = make(map[string]ProfileCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetToken stores the API token for profile.
func (m *Manager) SetToken(profile, token string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Profiles[profileName(profile)] = ProfileCredential{Token: token}

	return m.Save(creds)
}

// GetToken returns the stored token for profile.
// Returns an empty string if no token is stored.
func (m *Manager) GetToken(profile string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	return creds.Profiles[profileName(profile)].Token, nil
}

// ResolveToken returns the token from TokenEnvVar when set, otherwise the
// token stored for profile. The second value names where it came from.
func (m *Manager) ResolveToken(profile string) (string, string, error) {
	if token := strings.TrimSpace(os.Getenv(TokenEnvVar)); token != "" {
		return token, TokenEnvVar, nil
	}

	token, err := m.GetToken(profile)
	if err != nil {
		return "", "", err
	}
	if token == "" {
		return "", "", fmt.Errorf("%w for profile %q", ErrNoToken, profileName(profile))
	}

	return token, m.targetPath, nil
}

// RemoveProfile deletes the stored credential for profile.
func (m *Manager) RemoveProfile(profile string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Profiles, profileName(profile))

	return m.Save(creds)
}

// ListProfiles returns the names of profiles that have stored tokens.
func (m *Manager) ListProfiles() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	profiles := make([]string, 0, len(creds.Profiles))
	for name := range creds.Profiles {
		profiles = append(profiles, name)
	}

	sort.Strings(profiles)

	return profiles, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// MaskToken hides all but the last four characters of token.
func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", 8) + token[len(token)-4:]
}

func profileName(profile string) string {
	if profile = strings.TrimSpace(profile); profile == "" {
		return DefaultProfile
	}
	return profile
}
