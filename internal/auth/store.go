package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSession is returned by Load when no valid session exists on disk.
var ErrNoSession = errors.New("no stored session")

// Store persists session snapshots to one of two durable locations:
// remembered sessions go to the XDG config dir and survive indefinitely,
// unremembered ones go to the XDG state dir. Writing to one store always
// clears the other so the two can never diverge.
type Store struct {
	rememberPath  string // $XDG_CONFIG_HOME/exohunt/auth.json
	ephemeralPath string // $XDG_STATE_HOME/exohunt/auth.json
}

// NewStore resolves the two storage paths and creates their directories.
func NewStore() (*Store, error) {
	configDir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}
	stateDir, err := xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
	if err != nil {
		return nil, fmt.Errorf("resolving state directory: %w", err)
	}
	for _, dir := range []string{configDir, stateDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return &Store{
		rememberPath:  filepath.Join(configDir, "auth.json"),
		ephemeralPath: filepath.Join(stateDir, "auth.json"),
	}, nil
}

func xdgDir(envVar, fallback string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, "exohunt"), nil
}

// Save writes the session snapshot to the store selected by its Remember
// flag and removes any snapshot in the other store.
func (st *Store) Save(s *Session) error {
	primary, secondary := st.ephemeralPath, st.rememberPath
	if s.Remember {
		primary, secondary = st.rememberPath, st.ephemeralPath
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := writeAtomic(primary, data); err != nil {
		return err
	}
	if err := os.Remove(secondary); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear stale session: %w", err)
	}
	return nil
}

// Load hydrates a session, checking the remember store first. Snapshots
// that fail validation are discarded and their file removed. Returns
// ErrNoSession when neither store holds a valid snapshot.
func (st *Store) Load() (*Session, error) {
	for _, path := range []string{st.rememberPath, st.ephemeralPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read session: %w", err)
		}

		s, err := ParseSnapshot(data)
		if err != nil {
			// Corrupt or stale-format snapshot: drop it and keep looking.
			os.Remove(path)
			continue
		}
		return s, nil
	}
	return nil, ErrNoSession
}

// Clear removes snapshots from both stores.
func (st *Store) Clear() error {
	for _, path := range []string{st.rememberPath, st.ephemeralPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}
	return nil
}

// writeAtomic writes data via a temp file + os.Rename in the target's
// directory so a crash can never leave a torn snapshot.
func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "auth-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
