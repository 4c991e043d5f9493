package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audioguide", "prefs.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, s.Language())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "opening never creates the file")
}

func TestStore_SetLanguagePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetLanguage(" FR "))
	assert.Equal(t, "fr", s.Language())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "language: fr")

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "fr", reopened.Language())
}

func TestOpen_NormalizesStoredLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: PT\n"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "pt", s.Language())
}

func TestOpen_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: [unclosed"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestStore_SetLanguageWriteFailureKeepsOldValue(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "sub", "prefs.yaml"))
	require.NoError(t, err)

	// the parent directory becomes a regular file
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub"), nil, 0o644))

	assert.Error(t, s.SetLanguage("de"))
	assert.Empty(t, s.Language())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "audioguide", filepath.Base(filepath.Dir(path)))
	assert.Equal(t, "prefs.yaml", filepath.Base(path))
}
