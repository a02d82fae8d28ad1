package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

// Toml is used for holding the decoded state of a toml config file.
type Toml map[string]any

// RecursiveModifyToml will apply toml modifications at the current depth,
// then recurse for new depths.
func RecursiveModifyToml(c map[string]any, modifications Toml) error {
	for key, value := range modifications {
		if reflect.ValueOf(value).Kind() != reflect.Map {
			c[key] = value
			continue
		}
		sub, ok := value.(Toml)
		if !ok {
			return fmt.Errorf("modification of %q must be a Toml section, got %T", key, value)
		}
		existing, ok := c[key].(map[string]any)
		if !ok {
			existing = make(map[string]any)
		}
		if err := RecursiveModifyToml(existing, sub); err != nil {
			return err
		}
		c[key] = existing
	}
	return nil
}

// WriteConfig writes a config.toml with a single "localnet" network pointing at rpcURL,
// then applies modifications. It returns the file's path.
func WriteConfig(t testing.TB, dir, rpcURL string, modifications Toml) string {
	t.Helper()
	c := map[string]any{
		"default_network": "localnet",
		"networks": map[string]any{
			"localnet": map[string]any{
				"rpc_url":      rpcURL,
				"explorer_url": "https://explorer.localnet",
			},
		},
		"submit":  map[string]any{"retry_delay": "1ms"},
		"history": map[string]any{"enabled": false},
	}
	require.NoError(t, RecursiveModifyToml(c, modifications))

	buf := new(bytes.Buffer)
	require.NoError(t, toml.NewEncoder(buf).Encode(c))

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}
