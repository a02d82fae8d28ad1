package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/strangelove-ventures/nearcli/pipeline"
)

// chainDone ends an action chain and goes straight to signing.
const chainDone = "skip"

// actionFlagNames lists the flags each action accepts in a chain.
var actionFlagNames = map[string][]string{
	pipeline.KindTransfer:           {FlagAmount},
	pipeline.KindStake:              {FlagAmount, FlagPublicKey},
	pipeline.KindAddFullAccessKey:   {FlagPublicKey},
	pipeline.KindAddFunctionCallKey: {FlagPublicKey, FlagAllowance, FlagContract, FlagMethodNames},
	pipeline.KindDeleteKey:          {FlagPublicKey},
	pipeline.KindDeleteAccount:      {FlagBeneficiary},
	pipeline.KindCall:               {FlagMethod, FlagArgs, FlagGas, FlagDeposit},
	pipeline.KindDeploy:             {FlagWasmFile},
	pipeline.KindCreateAccount:      nil,
}

func (a *app) constructCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "construct-transaction [flags] -- [ACTION [ACTION FLAGS]]... [skip]",
		Short: "Build a transaction from any sequence of actions",
		Long: `Build a transaction from any sequence of actions.

Actions follow "--", each one a name and its flags:
  transfer               --amount
  stake                  --amount --public-key
  add-full-access-key    --public-key
  add-function-call-key  --public-key --allowance --contract --method-names
  delete-key             --public-key
  delete-account         --beneficiary
  call                   --method --args --gas --deposit
  deploy                 --wasm-file
  create-account

End the list with "skip" to sign right away; otherwise you are asked whether
to add more actions. With --non-interactive the list is always complete.`,
		Example: `  nearcli construct-transaction --sender alice.testnet --receiver app.alice.testnet -- \
    create-account transfer --amount 1NEAR add-full-access-key --public-key ed25519:... skip`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, tokens []string) error {
			chain, err := parseChain(tokens, a.nonInteractive)
			if err != nil {
				return err
			}
			args := a.pipelineArgs(cmd)
			args.ReceiverPolicy = pipeline.MayBeImplicit
			args.Receiver = a.preset(cmd, FlagReceiver)
			args.Chain = chain
			return a.runPipeline(cmd.Context(), args)
		},
	}
	addPipelineFlags(cmd.Flags())
	addActionFlags(cmd.Flags(), FlagReceiver)
	return cmd
}

// parseChain splits tokens into actions. Each action is a name followed by its
// flags; the next word that is not a flag or a flag's value starts the next action.
// Names are not checked here: an unknown one is reported when the action is resolved.
func parseChain(tokens []string, nonInteractive bool) (pipeline.ChainArgs, error) {
	var chain pipeline.ChainArgs
	for len(tokens) > 0 {
		kind := tokens[0]
		if kind == chainDone {
			if len(tokens) > 1 {
				return chain, usagef("%q must end the action list, found %q after it", chainDone, tokens[1:])
			}
			chain.Done = true
			break
		}

		fs := pflag.NewFlagSet(kind, pflag.ContinueOnError)
		fs.SetInterspersed(false)
		fs.SetOutput(io.Discard)
		addActionFlags(fs, actionFlagNames[kind]...)
		if err := fs.Parse(tokens[1:]); err != nil {
			return chain, &usageError{err: fmt.Errorf("action %d (%s): %w", len(chain.Actions)+1, kind, err)}
		}
		chain.Actions = append(chain.Actions, actionArgs(kind, fs, nonInteractive))
		tokens = fs.Args()
	}
	// Nobody can be asked for more actions, so a non-empty list is complete.
	if nonInteractive && len(chain.Actions) > 0 {
		chain.Done = true
	}
	return chain, nil
}
