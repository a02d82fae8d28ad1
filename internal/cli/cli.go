// Package cli is the nearcli command tree.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"
	"github.com/strangelove-ventures/nearcli/chain/near/client"
	"github.com/strangelove-ventures/nearcli/config"
	"github.com/strangelove-ventures/nearcli/history"
	"github.com/strangelove-ventures/nearcli/internal/prompt"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/log"
	"github.com/strangelove-ventures/nearcli/pipeline"
	"github.com/strangelove-ventures/nearcli/signer"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// KeychainPasswordEnv unlocks the file keychain backend without a prompt.
const KeychainPasswordEnv = "NEARCLI_KEYCHAIN_PASSWORD"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Runner executes one nearcli invocation.
type Runner struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Home replaces the user's home directory when locating the default config.
	Home string
	// Dial overrides how node clients are created.
	Dial pipeline.Dialer
	// Keyring overrides the configured keychain backend.
	Keyring keyring.Keyring
	// Device is the attached hardware signer, if any.
	Device signer.DeviceDriver
}

// usageError marks mistakes in how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// Run executes args and returns the process exit code: 0 on success, 2 when the
// command line itself is wrong and 1 for every other failure.
func (r *Runner) Run(ctx context.Context, args []string) int {
	a := &app{runner: r, log: log.Nop()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(r.In)
	root.SetOut(r.Out)
	root.SetErr(r.Err)

	err := root.ExecuteContext(ctx)
	err = multierr.Append(err, a.close())
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(r.Err, "Error: %v\n", err)
	var uerr *usageError
	if errors.As(err, &uerr) || !a.started {
		fmt.Fprintln(r.Err, "Run 'nearcli --help' for usage.")
		return exitUsage
	}
	return exitError
}

// app holds what the commands of one invocation share. Most of it is set up by
// the root command once flags are parsed.
type app struct {
	runner *Runner
	// started is set once the command line parsed, so later errors are not usage errors.
	started bool

	cfg            config.Config
	log            *zap.Logger
	prompter       prompt.Prompter
	nonInteractive bool

	keychain *signer.Keychain
	store    *history.Store
	db       *sql.DB
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nearcli",
		Short: "Construct, sign and submit NEAR transactions",
		Long: `Construct, sign and submit transactions for the NEAR network.

Every value can be given as a flag. Whatever is missing or invalid is asked for
interactively, and checked against the network unless working offline. Use
--non-interactive to fail instead of asking.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.String(FlagConfig, "", "config file, toml or yaml (default $HOME/.near-cli/config.toml)")
	pf.Bool(FlagNonInteractive, false, "fail instead of prompting for missing or invalid values")
	pf.String(FlagLogLevel, "", "log level: debug, info, warn or error")
	pf.String(FlagLogFormat, "", "log format: console or json")

	root.AddCommand(
		a.transferCmd(),
		a.stakeCmd(),
		a.addKeyCmd(),
		a.deleteKeyCmd(),
		a.deleteAccountCmd(),
		a.callCmd(),
		a.deployCmd(),
		a.createAccountCmd(),
		a.constructCmd(),
		a.viewCmd(),
		a.historyCmd(),
		a.generateKeyCmd(),
		a.keysCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	// cobra checks flag groups only after this hook, which would make them look like runtime errors.
	if err := cmd.ValidateFlagGroups(); err != nil {
		return &usageError{err: err}
	}
	a.started = true
	flags := cmd.Flags()

	home := a.runner.Home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}
	}
	path, _ := flags.GetString(FlagConfig)
	required := path != ""
	if !required {
		path = config.DefaultPath(home)
	}
	cfg, err := config.Load(home, path, required)
	if err != nil {
		return err
	}
	if v, _ := flags.GetString(FlagLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := flags.GetString(FlagLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.log = log.New(a.runner.Err, cfg.Log.Format, cfg.Log.Level)

	a.nonInteractive, _ = flags.GetBool(FlagNonInteractive)
	if a.nonInteractive {
		a.prompter = prompt.NonInteractive{}
	} else {
		a.prompter = prompt.NewTerminal(a.runner.In, a.runner.Out)
	}
	a.log.Debug("Configuration loaded", zap.String("path", path), zap.String("default_network", cfg.DefaultNetwork))
	return nil
}

func (a *app) close() error {
	// Syncing a terminal's stderr fails on some platforms.
	_ = a.log.Sync()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *app) dialer() pipeline.Dialer {
	if a.runner.Dial != nil {
		return a.runner.Dial
	}
	httpClient := &http.Client{Timeout: time.Duration(a.cfg.RPCTimeout)}
	return func(cfg ledger.ConnectionConfig) ledger.Client {
		return client.NewNearClient(a.log.With(zap.String("network", cfg.Name)), cfg.RPCURL).WithHTTPClient(httpClient)
	}
}

// connect returns a client for the named network, or the default one when name is empty.
func (a *app) connect(name string) (*ledger.Connection, error) {
	if name == "" {
		name = a.cfg.DefaultNetwork
	}
	for _, c := range a.cfg.Connections() {
		if c.Name == name {
			return &ledger.Connection{ConnectionConfig: c, Client: a.dialer()(c)}, nil
		}
	}
	return nil, fmt.Errorf("network %q is not configured", name)
}

// openKeychain returns nil when no keychain backend can be opened; keychain
// signing is then unavailable.
func (a *app) openKeychain() *signer.Keychain {
	if a.keychain != nil {
		return a.keychain
	}
	if a.runner.Keyring != nil {
		a.keychain = signer.NewKeychain(a.runner.Keyring)
		return a.keychain
	}
	kc, err := signer.OpenKeychain(a.cfg.Keychain.Backend, a.cfg.Keychain.Dir, a.keychainPassword)
	if err != nil {
		a.log.Warn("Keychain unavailable", zap.Error(err))
		return nil
	}
	a.keychain = kc
	return kc
}

func (a *app) keychainPassword(message string) (string, error) {
	if pw, ok := os.LookupEnv(KeychainPasswordEnv); ok {
		return pw, nil
	}
	return a.prompter.Password(message)
}

// openHistory returns nil, nil when history is disabled.
func (a *app) openHistory(ctx context.Context) (*history.Store, error) {
	if a.store != nil || !a.cfg.History.On() {
		return a.store, nil
	}
	db, err := history.ConnectDB(ctx, a.cfg.History.Path)
	if err != nil {
		return nil, err
	}
	if err := history.Migrate(ctx, db, Version); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	a.db = db
	a.store = history.NewStore(db)
	return a.store, nil
}

func (a *app) pipeline(ctx context.Context) *pipeline.Pipeline {
	r := pipeline.NewResolver(a.log, a.prompter, a.runner.Out)
	registry := pipeline.NewSignRegistry(pipeline.DefaultSignOptions(r, a.openKeychain(), a.runner.Device)...)

	opts := []pipeline.Option{pipeline.WithDefaultNetwork(a.cfg.DefaultNetwork)}
	store, err := a.openHistory(ctx)
	switch {
	case err != nil:
		a.log.Warn("Transaction history unavailable", zap.Error(err))
	case store != nil:
		opts = append(opts, pipeline.WithRecorder(store))
	}

	submit := pipeline.NewSubmitStep(a.log, a.runner.Out, time.Duration(a.cfg.Submit.RetryDelay))
	return pipeline.New(a.log, r, a.cfg.Connections(), a.dialer(), registry, submit, opts...)
}

func (a *app) runPipeline(ctx context.Context, args pipeline.Args) error {
	_, err := a.pipeline(ctx).Run(ctx, args)
	return err
}
