package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 9, cfg.Rooms.MaxPlayers)
}

func TestLoadServerConfigFromHCL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  address   = "0.0.0.0"
  port      = 9090
  log_level = "debug"
}

auth {
  secret = "super-secret"
}

rooms {
  small_blind = 1
  big_blind   = 2
  max_players = 6
}
`), 0o644))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "super-secret", cfg.Auth.Secret)
	assert.Equal(t, 1, cfg.Rooms.SmallBlind)
	assert.Equal(t, 2, cfg.Rooms.BigBlind)
	assert.Equal(t, 6, cfg.Rooms.MaxPlayers)

	// Derived buy-in defaults follow the configured blinds.
	assert.Equal(t, 40, cfg.Rooms.MinBuyIn)
	assert.Equal(t, 200, cfg.Rooms.MaxBuyIn)

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddress())
	require.NoError(t, cfg.Validate())
}

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultServerConfig()
	require.Error(t, cfg.Validate(), "missing auth secret")

	cfg.Auth.Secret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())
	cfg.Server.Port = 8080

	cfg.Rooms.BigBlind = cfg.Rooms.SmallBlind
	require.Error(t, cfg.Validate())
}
