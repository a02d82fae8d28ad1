package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/pipeline"
)

// Global flags.
const (
	FlagConfig         = "config"
	FlagNonInteractive = "non-interactive"
	FlagLogLevel       = "log-level"
	FlagLogFormat      = "log-format"
)

// Flags shared by every transaction command.
const (
	FlagMode            = "mode"
	FlagNetwork         = "network"
	FlagSender          = "sender"
	FlagSignWith        = "sign-with"
	FlagSignerSecretKey = "signer-secret-key"
	FlagSignerPublicKey = "signer-public-key"
	FlagNonce           = "nonce"
	FlagBlockHash       = "block-hash"
	FlagHDPath          = "hd-path"
	FlagSubmit          = "submit"
)

// Action flags.
const (
	FlagReceiver       = "receiver"
	FlagAmount         = "amount"
	FlagPublicKey      = "public-key"
	FlagAccess         = "access"
	FlagAllowance      = "allowance"
	FlagContract       = "contract"
	FlagMethodNames    = "method-names"
	FlagBeneficiary    = "beneficiary"
	FlagMethod         = "method"
	FlagArgs           = "args"
	FlagGas            = "gas"
	FlagDeposit        = "deposit"
	FlagWasmFile       = "wasm-file"
	FlagNewAccount     = "new-account"
	FlagInitialBalance = "initial-balance"
)

// Flags of the view, history and generate-key commands.
const (
	FlagBlockHeight    = "block-height"
	FlagLimit          = "limit"
	FlagSigner         = "signer"
	FlagSaveToKeychain = "save-to-keychain"
	FlagAccountID      = "account-id"
	FlagSeedPhrase     = "seed-phrase"
	FlagSeedPhrasePath = "seed-phrase-hd-path"
)

func addPipelineFlags(f *pflag.FlagSet) {
	f.String(FlagMode, "", "network to check values against the network, or offline to work air-gapped")
	f.String(FlagNetwork, "", "network to use, as named in the config (default: the config's default_network when non-interactive)")
	f.String(FlagSender, "", "account that signs and pays for the transaction")
	f.String(FlagSignWith, "", "private-key, keychain, ledger or manual")
	f.String(FlagSignerSecretKey, "", "secret key (ed25519:...) for --sign-with private-key")
	f.String(FlagSignerPublicKey, "", "public key for --sign-with manual")
	f.String(FlagNonce, "", "access key nonce, when offline")
	f.String(FlagBlockHash, "", "recent block hash, when offline")
	f.String(FlagHDPath, "", "derivation path on the device for --sign-with ledger")
	f.String(FlagSubmit, "", "send, or display the signed transaction without sending it")
}

// addActionFlags registers the named flags. Flags with a default fill in for a
// missing value in non-interactive mode; interactively the default is offered at the prompt.
func addActionFlags(f *pflag.FlagSet, names ...string) {
	for _, name := range names {
		switch name {
		case FlagReceiver:
			f.String(name, "", "account that receives the transaction")
		case FlagAmount:
			f.String(name, "", "amount of NEAR, e.g. 10NEAR, 0.5near or 1000yoctonear")
		case FlagPublicKey:
			f.String(name, "", "public key, e.g. ed25519:...")
		case FlagAccess:
			f.String(name, accessFull, "full-access or function-call")
		case FlagAllowance:
			f.String(name, "unlimited", "amount of NEAR the key may spend on gas, or unlimited")
		case FlagContract:
			f.String(name, "", "contract account")
		case FlagMethodNames:
			f.String(name, "", "comma separated methods the key may call, empty for any")
		case FlagBeneficiary:
			f.String(name, "", "account that receives the remaining balance")
		case FlagMethod:
			f.String(name, "", "contract method to call")
		case FlagArgs:
			f.String(name, "{}", "call arguments as JSON")
		case FlagGas:
			f.String(name, ledger.DefaultGas.String(), "gas to attach, e.g. 30Tgas")
		case FlagDeposit:
			f.String(name, "0NEAR", "amount of NEAR to attach to the call")
		case FlagWasmFile:
			f.String(name, "", "path to the contract's wasm file")
		case FlagNewAccount:
			f.String(name, "", "account to create")
		case FlagInitialBalance:
			f.String(name, "", "amount of NEAR to fund the new account with")
		default:
			panic("unknown action flag " + name)
		}
	}
}

// preset returns the value of a flag the operator set. An unset flag yields its
// default in non-interactive mode and nil otherwise, so the value gets asked for.
func preset(f *pflag.FlagSet, name string, nonInteractive bool) *string {
	flag := f.Lookup(name)
	if flag == nil {
		return nil
	}
	if !flag.Changed && (!nonInteractive || flag.DefValue == "") {
		return nil
	}
	v := flag.Value.String()
	return &v
}

func (a *app) preset(cmd *cobra.Command, name string) *string {
	return preset(cmd.Flags(), name, a.nonInteractive)
}

func (a *app) pipelineArgs(cmd *cobra.Command) pipeline.Args {
	network := a.preset(cmd, FlagNetwork)
	if network == nil && a.nonInteractive {
		network = &a.cfg.DefaultNetwork
	}
	return pipeline.Args{
		Mode:    a.preset(cmd, FlagMode),
		Network: network,
		Sender:  a.preset(cmd, FlagSender),
		Sign: pipeline.SignArgs{
			Method:    a.preset(cmd, FlagSignWith),
			SecretKey: a.preset(cmd, FlagSignerSecretKey),
			PublicKey: a.preset(cmd, FlagSignerPublicKey),
			Nonce:     a.preset(cmd, FlagNonce),
			BlockHash: a.preset(cmd, FlagBlockHash),
			HDPath:    a.preset(cmd, FlagHDPath),
		},
		Submit: a.preset(cmd, FlagSubmit),
	}
}

// actionArgs reads one action's flags from f.
func actionArgs(kind string, f *pflag.FlagSet, nonInteractive bool) pipeline.ActionArgs {
	get := func(name string) *string { return preset(f, name, nonInteractive) }
	return pipeline.ActionArgs{
		Kind:        &kind,
		Amount:      get(FlagAmount),
		PublicKey:   get(FlagPublicKey),
		Allowance:   get(FlagAllowance),
		Receiver:    get(FlagContract),
		MethodNames: get(FlagMethodNames),
		Beneficiary: get(FlagBeneficiary),
		Method:      get(FlagMethod),
		Args:        get(FlagArgs),
		Gas:         get(FlagGas),
		Deposit:     get(FlagDeposit),
		CodeFile:    get(FlagWasmFile),
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("%s takes no arguments, got %q", cmd.CommandPath(), args)
	}
	return nil
}
