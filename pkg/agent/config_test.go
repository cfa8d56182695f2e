package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateDefaults(t *testing.T) {
	cfg := &Config{StateDir: "/var/lib/termatlas"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, StoreBackendGitee, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/termatlas", cfg.StateDir)
}

func TestConfig_ValidateStateDirDefaultsToHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &Config{}

	require.NoError(t, cfg.Validate())
	assert.Contains(t, cfg.StateDir, ".termatlas")
}

func TestConfig_ValidateAcceptsNatsBackend(t *testing.T) {
	cfg := &Config{StateDir: "/tmp/state"}
	cfg.Store.Backend = StoreBackendNats

	require.NoError(t, cfg.Validate())
}

func TestConfig_ValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{StateDir: "/tmp/state"}
	cfg.Store.Backend = "redis"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
