package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CONFIG_PATH=/etc/tandem/from-dotenv.yaml\n"), 0o600))

	t.Run("dotenv sets config path", func(t *testing.T) {
		unsetEnv(t, "CONFIG_PATH")
		assert.Equal(t, "/etc/tandem/from-dotenv.yaml", resolveConfigPath(envFile, "", false))
	})

	t.Run("real env wins over dotenv", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "/etc/tandem/real.yaml")
		assert.Equal(t, "/etc/tandem/real.yaml", resolveConfigPath(envFile, "", false))
	})

	t.Run("flag wins over everything", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "/etc/tandem/real.yaml")
		assert.Equal(t, "cli.yaml", resolveConfigPath(envFile, "cli.yaml", true))
	})

	t.Run("missing dotenv is fine", func(t *testing.T) {
		unsetEnv(t, "CONFIG_PATH")
		assert.Equal(t, "", resolveConfigPath(filepath.Join(dir, "nope.env"), "", false))
	})
}
