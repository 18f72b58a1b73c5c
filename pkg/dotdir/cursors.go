package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	cursorsFile = "cursors.json"
)

// ProgressCursor is the resume point of one request's progress feed.
type ProgressCursor struct {
	Namespace   string `json:"namespace"`
	Application string `json:"application"`
	RequestID   string `json:"request_id"`

	// NextToken is the page token to pass on the next poll.
	NextToken string `json:"next_token"`

	// Seen counts the updates already shown.
	Seen int `json:"seen"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Key identifies the cursor in cursors.json.
func (c *ProgressCursor) Key() string {
	return CursorKey(c.Namespace, c.Application, c.RequestID)
}

// CursorKey builds the cursors.json key for a request.
func CursorKey(namespace, application, requestID string) string {
	return strings.Join([]string{namespace, application, requestID}, "/")
}

// cursorState is the on-disk layout of cursors.json.
type cursorState struct {
	Cursors map[string]*ProgressCursor `json:"cursors"`
}

// LoadCursor returns the saved cursor for key.
// Returns nil, nil if no cursor was saved.
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadCursor(overrideDir, key string) (*ProgressCursor, error) {
	state, _, err := m.readCursors(overrideDir)
	if err != nil {
		return nil, err
	}
	return state.Cursors[key], nil
}

// SaveCursor stores cursor, replacing any previous cursor for the same
// request, and stamps its UpdatedAt.
func (m *Manager) SaveCursor(overrideDir string, cursor *ProgressCursor) error {
	if cursor == nil {
		return errors.New("cannot save nil cursor")
	}

	state, path, err := m.readCursors(overrideDir)
	if err != nil {
		return err
	}

	cursor.UpdatedAt = time.Now().UTC()
	state.Cursors[cursor.Key()] = cursor

	return writeCursors(path, state)
}

// ClearCursor removes the cursor for key.
// Returns nil if no cursor was saved.
func (m *Manager) ClearCursor(overrideDir, key string) error {
	state, path, err := m.readCursors(overrideDir)
	if err != nil {
		return err
	}

	if _, ok := state.Cursors[key]; !ok {
		return nil
	}
	delete(state.Cursors, key)

	return writeCursors(path, state)
}

// ListCursors returns every saved cursor ordered by key.
func (m *Manager) ListCursors(overrideDir string) ([]*ProgressCursor, error) {
	state, _, err := m.readCursors(overrideDir)
	if err != nil {
		return nil, err
	}

	out := make([]*ProgressCursor, 0, len(state.Cursors))
	for _, c := range state.Cursors {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *ProgressCursor) int {
		return strings.Compare(a.Key(), b.Key())
	})
	return out, nil
}

func (m *Manager) readCursors(overrideDir string) (*cursorState, string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, "", err
	}

	path := filepath.Join(dir, cursorsFile)
	state := &cursorState{Cursors: map[string]*ProgressCursor{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, path, nil
		}
		return nil, "", fmt.Errorf("reading cursors: %w", err)
	}

	if err := json.Unmarshal(data, state); err != nil {
		return nil, "", fmt.Errorf("parsing cursors: %w", err)
	}
	if state.Cursors == nil {
		state.Cursors = map[string]*ProgressCursor{}
	}

	return state, path, nil
}

func writeCursors(path string, state *cursorState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cursors: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing cursors: %w", err)
	}

	return nil
}
