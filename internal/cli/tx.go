package cli

import (
	"github.com/spf13/cobra"
	"github.com/strangelove-ventures/nearcli/pipeline"
)

const (
	accessFull         = "full-access"
	accessFunctionCall = "function-call"
)

// verb is a transaction command with a fixed list of actions.
type verb struct {
	use     string
	short   string
	example string
	policy  pipeline.AccountPolicy
	// receiverFlag names the flag holding the receiver. Unused with ReceiverIsSender.
	receiverFlag string
	flags        []string
	actions      func(cmd *cobra.Command) ([]pipeline.ActionArgs, error)
}

func (a *app) verbCmd(v verb) *cobra.Command {
	cmd := &cobra.Command{
		Use:     v.use,
		Short:   v.short,
		Example: v.example,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actions, err := v.actions(cmd)
			if err != nil {
				return err
			}
			args := a.pipelineArgs(cmd)
			args.ReceiverPolicy = v.policy
			if v.receiverFlag != "" {
				args.Receiver = a.preset(cmd, v.receiverFlag)
			}
			args.Chain = pipeline.ChainArgs{Actions: actions, Done: true}
			return a.runPipeline(cmd.Context(), args)
		},
	}
	addPipelineFlags(cmd.Flags())
	addActionFlags(cmd.Flags(), v.flags...)
	return cmd
}

// single builds the one action of kind from the command's flags.
func (a *app) single(kind string) func(cmd *cobra.Command) ([]pipeline.ActionArgs, error) {
	return func(cmd *cobra.Command) ([]pipeline.ActionArgs, error) {
		return []pipeline.ActionArgs{actionArgs(kind, cmd.Flags(), a.nonInteractive)}, nil
	}
}

func (a *app) transferCmd() *cobra.Command {
	return a.verbCmd(verb{
		use:          "transfer",
		short:        "Send NEAR to another account",
		example:      "  nearcli transfer --network testnet --sender alice.testnet --receiver bob.testnet --amount 5NEAR --sign-with keychain --submit send",
		policy:       pipeline.MayBeImplicit,
		receiverFlag: FlagReceiver,
		flags:        []string{FlagReceiver, FlagAmount},
		actions:      a.single(pipeline.KindTransfer),
	})
}

func (a *app) stakeCmd() *cobra.Command {
	return a.verbCmd(verb{
		use:     "stake",
		short:   "Stake NEAR as a validator",
		policy:  pipeline.ReceiverIsSender,
		flags:   []string{FlagAmount, FlagPublicKey},
		actions: a.single(pipeline.KindStake),
	})
}

func (a *app) addKeyCmd() *cobra.Command {
	return a.verbCmd(verb{
		use:     "add-key",
		short:   "Add a full access or function call key to the sender's account",
		example: "  nearcli add-key --sender alice.testnet --public-key ed25519:... --access function-call --contract app.testnet --method-names vote,unvote",
		policy:  pipeline.ReceiverIsSender,
		flags:   []string{FlagPublicKey, FlagAccess, FlagAllowance, FlagContract, FlagMethodNames},
		actions: func(cmd *cobra.Command) ([]pipeline.ActionArgs, error) {
			access, _ := cmd.Flags().GetString(FlagAccess)
			var kind string
			switch access {
			case accessFull:
				kind = pipeline.KindAddFullAccessKey
			case accessFunctionCall:
				kind = pipeline.KindAddFunctionCallKey
			default:
				return nil, usagef("--%s must be %s or %s, got %q", FlagAccess, accessFull, accessFunctionCall, access)
			}
			return []pipeline.ActionArgs{actionArgs(kind, cmd.Flags(), a.nonInteractive)}, nil
		},
	})
}

func (a *app) deleteKeyCmd() *cobra.Command {
	return a.verbCmd(verb{
		use:     "delete-key",
		short:   "Delete an access key from the sender's account",
		policy:  pipeline.ReceiverIsSender,
		flags:   []string{FlagPublicKey},
		actions: a.single(pipeline.KindDeleteKey),
	})
}

func (a *app) deleteAccountCmd() *cobra.Command {
	return a.verbCmd(verb{
		use:     "delete-account",
		short:   "Delete the sender's account and send its balance to a beneficiary",
		policy:  pipeline.ReceiverIsSender,
		flags:   []string{FlagBeneficiary},
		actions: a.single(pipeline.KindDeleteAccount),
	})
}

func (a *app) callCmd() *cobra.Command {
	return a.verbCmd(verb{
		use:          "call",
		short:        "Call a contract method",
		example:      `  nearcli call --sender alice.testnet --contract counter.testnet --method increment --args '{"by":2}' --gas 30Tgas`,
		policy:       pipeline.MustExist,
		receiverFlag: FlagContract,
		flags:        []string{FlagContract, FlagMethod, FlagArgs, FlagGas, FlagDeposit},
		actions: func(cmd *cobra.Command) ([]pipeline.ActionArgs, error) {
			act := actionArgs(pipeline.KindCall, cmd.Flags(), a.nonInteractive)
			// --contract is the transaction's receiver here, not a key restriction.
			act.Receiver = nil
			return []pipeline.ActionArgs{act}, nil
		},
	})
}

func (a *app) deployCmd() *cobra.Command {
	return a.verbCmd(verb{
		use:     "deploy",
		short:   "Deploy a contract to the sender's account",
		policy:  pipeline.ReceiverIsSender,
		flags:   []string{FlagWasmFile},
		actions: a.single(pipeline.KindDeploy),
	})
}

func (a *app) createAccountCmd() *cobra.Command {
	return a.verbCmd(verb{
		use:          "create-account",
		short:        "Create a sub-account, fund it and give it a full access key",
		example:      "  nearcli create-account --sender alice.testnet --new-account app.alice.testnet --initial-balance 1NEAR --public-key ed25519:...",
		policy:       pipeline.MustNotExist,
		receiverFlag: FlagNewAccount,
		flags:        []string{FlagNewAccount, FlagInitialBalance, FlagPublicKey},
		actions: func(cmd *cobra.Command) ([]pipeline.ActionArgs, error) {
			create, transfer, addKey := pipeline.KindCreateAccount, pipeline.KindTransfer, pipeline.KindAddFullAccessKey
			return []pipeline.ActionArgs{
				{Kind: &create},
				{Kind: &transfer, Amount: a.preset(cmd, FlagInitialBalance)},
				{Kind: &addKey, PublicKey: a.preset(cmd, FlagPublicKey)},
			}, nil
		},
	})
}
