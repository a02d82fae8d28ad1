package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/strangelove-ventures/nearcli/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := config.Load(home, config.DefaultPath(home), false)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "testnet", cfg.DefaultNetwork)
	require.Equal(t, config.Duration(2*time.Minute), cfg.RPCTimeout)
	require.Equal(t, []string{"betanet", "mainnet", "testnet"}, cfg.NetworkNames())
	require.True(t, cfg.History.On())
	require.Equal(t, filepath.Join(home, ".near-cli", "history.db"), cfg.History.Path)

	_, err = config.Load(home, filepath.Join(home, "missing.toml"), true)
	require.Error(t, err, "a named file must exist")
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
default_network = "localnet"
rpc_timeout = "30s"

[log]
level = "debug"
format = "json"

[networks.localnet]
rpc_url = "http://127.0.0.1:3030"

[networks.testnet]
rpc_url = "https://archival-rpc.testnet.near.org"

[submit]
retry_delay = "2s"

[history]
enabled = false
`)
	cfg, err := config.Load(t.TempDir(), path, true)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "localnet", cfg.DefaultNetwork)
	require.Equal(t, "http://127.0.0.1:3030", cfg.Networks["localnet"].RPCURL)
	require.Equal(t, "https://archival-rpc.testnet.near.org", cfg.Networks["testnet"].RPCURL)
	require.Equal(t, "https://explorer.testnet.near.org", cfg.Networks["testnet"].ExplorerURL, "unset fields keep their defaults")
	require.Equal(t, config.Duration(2*time.Second), cfg.Submit.RetryDelay)
	require.Equal(t, config.Duration(30*time.Second), cfg.RPCTimeout)
	require.False(t, cfg.History.On())

	conns := cfg.Connections()
	require.Len(t, conns, 4)
	require.Equal(t, "betanet", conns[0].Name)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
log:
  level: info
networks:
  mainnet:
    rpc_url: https://rpc.example.org
keychain:
  backend: file
history:
  path: /tmp/elsewhere.db
`)
	cfg, err := config.Load(t.TempDir(), path, true)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "https://rpc.example.org", cfg.Networks["mainnet"].RPCURL)
	require.Equal(t, "file", cfg.Keychain.Backend)
	require.Equal(t, "/tmp/elsewhere.db", cfg.History.Path)
	require.True(t, cfg.History.On(), "setting only the path keeps history on")
}

func TestLoadUnknownKeys(t *testing.T) {
	_, err := config.Load(t.TempDir(), writeFile(t, "config.toml", "colour = \"blue\"\n"), true)
	require.ErrorContains(t, err, "unknown keys")

	_, err = config.Load(t.TempDir(), writeFile(t, "config.yml", "colour: blue\n"), true)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.DefaultNetwork = "nowhere"
	cfg.Networks["testnet"] = config.Network{RPCURL: "ftp://rpc"}
	cfg.Submit.RetryDelay = -1
	cfg.RPCTimeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 6)
}
