// Package config loads the CLI configuration from a TOML or YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/log"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// DirName is the directory under $HOME holding the config file, history database and file keychain.
const DirName = ".near-cli"

type Config struct {
	Log            Log                `toml:"log" yaml:"log"`
	DefaultNetwork string             `toml:"default_network" yaml:"default_network"`
	Networks       map[string]Network `toml:"networks" yaml:"networks"`
	Keychain       Keychain           `toml:"keychain" yaml:"keychain"`
	Submit         Submit             `toml:"submit" yaml:"submit"`
	History        History            `toml:"history" yaml:"history"`

	// RPCTimeout bounds each request to a node. A request that runs out is retried like a node timeout.
	RPCTimeout Duration `toml:"rpc_timeout" yaml:"rpc_timeout"`
}

type Log struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

type Network struct {
	RPCURL      string `toml:"rpc_url" yaml:"rpc_url"`
	WalletURL   string `toml:"wallet_url" yaml:"wallet_url"`
	ExplorerURL string `toml:"explorer_url" yaml:"explorer_url"`
}

type Keychain struct {
	// Backend is a 99designs/keyring backend name such as "file", "keychain" or "secret-service".
	// Empty selects the platform default.
	Backend string `toml:"backend" yaml:"backend"`
	// Dir holds the encrypted files of the "file" backend.
	Dir string `toml:"dir" yaml:"dir"`
}

type Submit struct {
	// RetryDelay is the pause between broadcast attempts after a timeout.
	RetryDelay Duration `toml:"retry_delay" yaml:"retry_delay"`
}

type History struct {
	// Enabled defaults to true when unset.
	Enabled *bool  `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// On reports whether transactions should be recorded.
func (h History) On() bool {
	return h.Enabled == nil || *h.Enabled
}

// Duration reads "1s" style strings from either file format.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration rooted at home.
func Default(home string) Config {
	dir := filepath.Join(home, DirName)
	return Config{
		Log: Log{
			Level:  log.DefaultLevel,
			Format: "console",
		},
		DefaultNetwork: "testnet",
		RPCTimeout:     Duration(2 * time.Minute),
		Networks: map[string]Network{
			"testnet": {
				RPCURL:      "https://rpc.testnet.near.org",
				WalletURL:   "https://wallet.testnet.near.org",
				ExplorerURL: "https://explorer.testnet.near.org",
			},
			"mainnet": {
				RPCURL:      "https://rpc.mainnet.near.org",
				WalletURL:   "https://wallet.near.org",
				ExplorerURL: "https://explorer.near.org",
			},
			"betanet": {
				RPCURL:      "https://rpc.betanet.near.org",
				WalletURL:   "https://wallet.betanet.near.org",
				ExplorerURL: "https://explorer.betanet.near.org",
			},
		},
		Keychain: Keychain{
			Dir: filepath.Join(dir, "keychain"),
		},
		History: History{
			Path: filepath.Join(dir, "history.db"),
		},
	}
}

// DefaultPath is where Load looks when no file is named.
func DefaultPath(home string) string {
	return filepath.Join(home, DirName, "config.toml")
}

// Load reads the file at path over the defaults. A missing file is only an
// error when required is set, i.e. the operator named the file explicitly.
func Load(home, path string, required bool) (Config, error) {
	cfg := Default(home)

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(b), &file)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("parse %s: unknown keys %v", path, undecoded)
		}
	}

	cfg.merge(file)
	return cfg, nil
}

// merge overlays the non-zero settings of o onto c.
func (c *Config) merge(o Config) {
	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.Format != "" {
		c.Log.Format = o.Log.Format
	}
	if o.DefaultNetwork != "" {
		c.DefaultNetwork = o.DefaultNetwork
	}
	if o.RPCTimeout != 0 {
		c.RPCTimeout = o.RPCTimeout
	}
	for name, n := range o.Networks {
		base := c.Networks[name]
		if n.RPCURL != "" {
			base.RPCURL = n.RPCURL
		}
		if n.WalletURL != "" {
			base.WalletURL = n.WalletURL
		}
		if n.ExplorerURL != "" {
			base.ExplorerURL = n.ExplorerURL
		}
		c.Networks[name] = base
	}
	if o.Keychain.Backend != "" {
		c.Keychain.Backend = o.Keychain.Backend
	}
	if o.Keychain.Dir != "" {
		c.Keychain.Dir = o.Keychain.Dir
	}
	if o.Submit.RetryDelay != 0 {
		c.Submit.RetryDelay = o.Submit.RetryDelay
	}
	if o.History.Path != "" {
		c.History.Path = o.History.Path
	}
	if o.History.Enabled != nil {
		c.History.Enabled = o.History.Enabled
	}
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var err error
	if !log.ValidLevel(c.Log.Level) {
		err = multierr.Append(err, fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		err = multierr.Append(err, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	if _, ok := c.Networks[c.DefaultNetwork]; !ok {
		err = multierr.Append(err, fmt.Errorf("default_network %q is not configured", c.DefaultNetwork))
	}
	for _, name := range c.NetworkNames() {
		n := c.Networks[name]
		if verr := validURL(n.RPCURL); verr != nil {
			err = multierr.Append(err, fmt.Errorf("networks.%s.rpc_url: %w", name, verr))
		}
		if n.ExplorerURL != "" {
			if verr := validURL(n.ExplorerURL); verr != nil {
				err = multierr.Append(err, fmt.Errorf("networks.%s.explorer_url: %w", name, verr))
			}
		}
	}
	if c.RPCTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("rpc_timeout must be positive"))
	}
	if c.Submit.RetryDelay < 0 {
		err = multierr.Append(err, fmt.Errorf("submit.retry_delay must not be negative"))
	}
	if c.History.On() && c.History.Path == "" {
		err = multierr.Append(err, fmt.Errorf("history.path is required when history is enabled"))
	}
	return err
}

func validURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http or https URL", s)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", s)
	}
	return nil
}

// NetworkNames returns the configured networks in a stable order.
func (c Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Connections returns every network as a ledger.ConnectionConfig, sorted by name.
func (c Config) Connections() []ledger.ConnectionConfig {
	out := make([]ledger.ConnectionConfig, 0, len(c.Networks))
	for _, name := range c.NetworkNames() {
		n := c.Networks[name]
		out = append(out, ledger.ConnectionConfig{
			Name:        name,
			RPCURL:      n.RPCURL,
			WalletURL:   n.WalletURL,
			ExplorerURL: n.ExplorerURL,
		})
	}
	return out
}
