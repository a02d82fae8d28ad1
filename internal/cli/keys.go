package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/signer"
	"go.uber.org/zap"
)

func (a *app) generateKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-key",
		Short: "Create a key pair from a new or existing seed phrase",
		Long: `Create a key pair from a new seed phrase, or recover one from --seed-phrase.

With --save-to-keychain the secret key is stored in the keychain for
--account-id on --network, where --sign-with keychain finds it. The account
defaults to the key's implicit account.`,
		Args: noArgs,
		RunE: a.generateKey,
	}
	f := cmd.Flags()
	f.String(FlagSeedPhrase, "", "recover the key from this seed phrase instead of generating one")
	f.String(FlagSeedPhrasePath, signer.DefaultSeedPhrasePath, "derivation path of the key")
	f.Bool(FlagSaveToKeychain, false, "store the secret key in the keychain")
	f.String(FlagAccountID, "", "account to store the key for (default the implicit account)")
	f.String(FlagNetwork, "", "network to store the key for (default from the config)")
	return cmd
}

func (a *app) generateKey(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	pathFlag, _ := f.GetString(FlagSeedPhrasePath)
	path, err := signer.ParseHDPath(pathFlag)
	if err != nil {
		return &usageError{err: fmt.Errorf("--%s: %w", FlagSeedPhrasePath, err)}
	}

	mnemonic, _ := f.GetString(FlagSeedPhrase)
	recovered := strings.TrimSpace(mnemonic) != ""
	if !recovered {
		if mnemonic, err = signer.NewMnemonic(); err != nil {
			return fmt.Errorf("generate seed phrase: %w", err)
		}
	}
	sk, err := signer.KeyFromMnemonic(mnemonic, "", path)
	if err != nil {
		return err
	}
	pk := sk.PublicKey()

	out := cmd.OutOrStdout()
	if !recovered {
		fmt.Fprintf(out, "Seed phrase:         %s\n", mnemonic)
	}
	fmt.Fprintf(out, "HD path:             %s\n", path)
	fmt.Fprintf(out, "Implicit account id: %s\n", pk.ImplicitAccountID())
	fmt.Fprintf(out, "Public key:          %s\n", pk)

	save, _ := f.GetBool(FlagSaveToKeychain)
	if !save {
		fmt.Fprintf(out, "Secret key:          %s\n", sk)
		return nil
	}

	account := pk.ImplicitAccountID()
	if s, _ := f.GetString(FlagAccountID); s != "" {
		if account, err = ledger.ParseAccountID(s); err != nil {
			return &usageError{err: err}
		}
	}
	kc, network, err := a.keychainFor(cmd)
	if err != nil {
		return fmt.Errorf("%w; run again without --%s and keep the secret key safe", err, FlagSaveToKeychain)
	}
	if err := kc.Save(network, account, sk); err != nil {
		return fmt.Errorf("save key for %s: %w", account, err)
	}
	a.log.Info("Key saved", zap.String("account_id", account.String()), zap.String("network", network), zap.String("public_key", pk.String()))
	fmt.Fprintf(out, "Saved the secret key for %s on %s to the keychain.\n", account, network)
	return nil
}

func (a *app) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage secret keys stored in the keychain",
	}
	cmd.PersistentFlags().String(FlagNetwork, "", "network the keys belong to (default from the config)")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the accounts with a stored key",
			Args:  noArgs,
			RunE:  a.listKeys,
		},
		&cobra.Command{
			Use:   "remove ACCOUNT_ID",
			Short: "Delete the stored key of an account",
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) != 1 {
					return usagef("%s takes exactly one account id, got %d arguments", cmd.CommandPath(), len(args))
				}
				return nil
			},
			RunE: a.removeKey,
		},
	)
	return cmd
}

// keychainFor resolves --network and opens the keychain.
func (a *app) keychainFor(cmd *cobra.Command) (*signer.Keychain, string, error) {
	network, _ := cmd.Flags().GetString(FlagNetwork)
	if network == "" {
		network = a.cfg.DefaultNetwork
	}
	if _, ok := a.cfg.Networks[network]; !ok {
		return nil, "", fmt.Errorf("network %q is not configured", network)
	}
	kc := a.openKeychain()
	if kc == nil {
		return nil, "", fmt.Errorf("no keychain is available")
	}
	return kc, network, nil
}

func (a *app) listKeys(cmd *cobra.Command, _ []string) error {
	kc, network, err := a.keychainFor(cmd)
	if err != nil {
		return err
	}
	accounts, err := kc.Accounts(network)
	if err != nil {
		return fmt.Errorf("list keychain: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(accounts) == 0 {
		fmt.Fprintf(out, "No keys stored for %s.\n", network)
		return nil
	}
	for _, account := range accounts {
		fmt.Fprintln(out, account)
	}
	return nil
}

func (a *app) removeKey(cmd *cobra.Command, args []string) error {
	account, err := ledger.ParseAccountID(args[0])
	if err != nil {
		return &usageError{err: err}
	}
	kc, network, err := a.keychainFor(cmd)
	if err != nil {
		return err
	}
	if err := kc.Remove(network, account); err != nil {
		return fmt.Errorf("remove key for %s: %w", account, err)
	}
	a.log.Info("Key removed", zap.String("account_id", account.String()), zap.String("network", network))
	fmt.Fprintf(cmd.OutOrStdout(), "Removed the key for %s on %s.\n", account, network)
	return nil
}
