// Package dotdir manages the .cloudctl/ and ~/.cloudctl directories.
//
// Besides config.toml and credentials.toml, the directory holds cursors.json:
// the last seen page token of each followed request progress feed, so an
// interrupted "requests progress" can resume where it stopped.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the cloudctl directory.
	dirName = ".cloudctl"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .cloudctl/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.cloudctl/ dir
//  3. Home ~/.cloudctl/ dir
//  4. If none found, attempt to create ~/.cloudctl/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cloudctl directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// localDirExists checks whether a .cloudctl/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
