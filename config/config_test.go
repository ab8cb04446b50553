package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookingd.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddress)
	require.Equal(t, 1, cfg.DefaultMinArbitrators)
	require.NotEmpty(t, cfg.AdminTokenSigningKey)

	require.FileExists(t, path)
}

func TestLoadRoundTripsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookingd.toml")

	first, err := Load(path)
	require.NoError(t, err)

	second, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, first.AdminTokenSigningKey, second.AdminTokenSigningKey)
	require.Equal(t, first.ListenAddress, second.ListenAddress)
}

func TestLoadBackfillsMissingSigningKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookingd.toml")
	require.NoError(t, os.WriteFile(path, []byte("ListenAddress = \":9090\"\nDataDir = \"./data\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddress)
	require.NotEmpty(t, cfg.AdminTokenSigningKey)
}
