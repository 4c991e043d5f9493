// Package prefs persists the discovery client preferences as YAML.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/audioguide-discovery/internal/discovery"
)

const fileHeader = "# Audio guide discovery preferences\n\n"

// Preferences is the file content.
type Preferences struct {
	Language string `yaml:"language"`
}

// Store is a discovery.LanguageStore backed by a YAML file. The file is only
// written when a preference changes.
type Store struct {
	path string

	mu    sync.Mutex
	prefs Preferences
}

var _ discovery.LanguageStore = (*Store)(nil)

// DefaultPath is $XDG_CONFIG_HOME/audioguide/prefs.yaml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "audioguide", "prefs.yaml"), nil
}

// Open reads the preferences at path. A missing file yields empty preferences.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	s.prefs.Language = discovery.NormalizeLanguage(s.prefs.Language)

	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Language
}

// SetLanguage stores code and rewrites the file.
func (s *Store) SetLanguage(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs
	next.Language = discovery.NormalizeLanguage(code)
	if err := save(s.path, next); err != nil {
		return err
	}
	s.prefs = next
	return nil
}

func save(path string, p Preferences) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	// write then rename so a crash never leaves a truncated file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append([]byte(fileHeader), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}
