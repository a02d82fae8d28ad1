package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strangelove-ventures/nearcli/ledger"
	"golang.org/x/sync/errgroup"
)

func (a *app) viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Look up accounts, access keys and blocks",
	}
	pf := cmd.PersistentFlags()
	pf.String(FlagNetwork, "", "network to query (default from the config)")
	pf.Uint64(FlagBlockHeight, 0, "query at this block height instead of the final block")
	pf.String(FlagBlockHash, "", "query at this block hash instead of the final block")
	cmd.MarkFlagsMutuallyExclusive(FlagBlockHeight, FlagBlockHash)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "account ACCOUNT_ID",
			Short: "Show an account's balance, contract and access keys",
			Args:  exactArgs(1),
			RunE:  a.viewAccount,
		},
		&cobra.Command{
			Use:   "access-keys ACCOUNT_ID",
			Short: "List an account's access keys with their nonces",
			Args:  exactArgs(1),
			RunE:  a.viewAccessKeys,
		},
		&cobra.Command{
			Use:   "block",
			Short: "Show a block, by default the latest final one",
			Args:  noArgs,
			RunE:  a.viewBlock,
		},
	)
	return cmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// blockReference reads --block-height and --block-hash.
func blockReference(cmd *cobra.Command) (ledger.BlockReference, error) {
	f := cmd.Flags()
	if f.Changed(FlagBlockHash) {
		s, _ := f.GetString(FlagBlockHash)
		h, err := ledger.ParseCryptoHash(s)
		if err != nil {
			return ledger.BlockReference{}, &usageError{err: fmt.Errorf("--%s: %w", FlagBlockHash, err)}
		}
		return ledger.AtHash(h), nil
	}
	if f.Changed(FlagBlockHeight) {
		height, _ := f.GetUint64(FlagBlockHeight)
		return ledger.AtHeight(height), nil
	}
	return ledger.FinalBlock(), nil
}

func (a *app) viewTarget(cmd *cobra.Command) (*ledger.Connection, ledger.BlockReference, error) {
	at, err := blockReference(cmd)
	if err != nil {
		return nil, at, err
	}
	network, _ := cmd.Flags().GetString(FlagNetwork)
	conn, err := a.connect(network)
	return conn, at, err
}

func parseAccountArg(s string) (ledger.AccountID, error) {
	id, err := ledger.ParseAccountID(s)
	if err != nil {
		return "", &usageError{err: err}
	}
	return id, nil
}

func (a *app) viewAccount(cmd *cobra.Command, args []string) error {
	id, err := parseAccountArg(args[0])
	if err != nil {
		return err
	}
	conn, at, err := a.viewTarget(cmd)
	if err != nil {
		return err
	}

	var (
		account *ledger.AccountView
		keys    []ledger.AccessKeyInfo
	)
	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.Go(func() (err error) {
		account, err = conn.Client.ViewAccount(ctx, id, at)
		return err
	})
	eg.Go(func() (err error) {
		keys, err = conn.Client.ViewAccessKeyList(ctx, id, at)
		return err
	})
	if err := eg.Wait(); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return fmt.Errorf("account %s does not exist on %s at %s", id, conn.Name, at)
		}
		return fmt.Errorf("view account %s: %w", id, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Account %s on %s at block #%d (%s)\n", id, conn.Name, account.BlockHeight, account.BlockHash)
	fmt.Fprintf(out, "  Balance:      %s\n", account.Amount)
	fmt.Fprintf(out, "  Locked:       %s\n", account.Locked)
	fmt.Fprintf(out, "  Storage used: %d bytes\n", account.StorageUsage)
	if account.HasContract() {
		fmt.Fprintf(out, "  Contract:     code hash %s\n", account.CodeHash)
	} else {
		fmt.Fprintln(out, "  Contract:     none")
	}
	printAccessKeys(out, keys)
	return nil
}

func (a *app) viewAccessKeys(cmd *cobra.Command, args []string) error {
	id, err := parseAccountArg(args[0])
	if err != nil {
		return err
	}
	conn, at, err := a.viewTarget(cmd)
	if err != nil {
		return err
	}
	keys, err := conn.Client.ViewAccessKeyList(cmd.Context(), id, at)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return fmt.Errorf("account %s does not exist on %s at %s", id, conn.Name, at)
	}
	if err != nil {
		return fmt.Errorf("view access keys of %s: %w", id, err)
	}
	printAccessKeys(cmd.OutOrStdout(), keys)
	return nil
}

func printAccessKeys(w io.Writer, keys []ledger.AccessKeyInfo) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].PublicKey.String() < keys[j].PublicKey.String() })
	fmt.Fprintf(w, "Access keys (%d):\n", len(keys))
	for _, k := range keys {
		fmt.Fprintf(w, "  %s  nonce %d  %s\n", k.PublicKey, k.AccessKey.Nonce, describePermission(k.AccessKey))
	}
}

func describePermission(ak ledger.AccessKeyView) string {
	if ak.FullAccess {
		return "full access"
	}
	allowance := "unlimited"
	if ak.Allowance != nil {
		allowance = ak.Allowance.String()
	}
	methods := "any method"
	if len(ak.MethodNames) > 0 {
		methods = strings.Join(ak.MethodNames, ", ")
	}
	return fmt.Sprintf("function call to %s (%s), allowance %s", ak.Receiver, methods, allowance)
}

func (a *app) viewBlock(cmd *cobra.Command, _ []string) error {
	conn, at, err := a.viewTarget(cmd)
	if err != nil {
		return err
	}
	block, err := conn.Client.Block(cmd.Context(), at)
	if err != nil {
		return fmt.Errorf("view %s: %w", at, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Block #%d on %s\n", block.Height, conn.Name)
	fmt.Fprintf(out, "  Hash:      %s\n", block.Hash)
	fmt.Fprintf(out, "  Previous:  %s\n", block.PrevHash)
	fmt.Fprintf(out, "  Timestamp: %s\n", block.Timestamp.UTC().Format("2006-01-02 15:04:05.000 MST"))
	if block.Author != "" {
		fmt.Fprintf(out, "  Author:    %s\n", block.Author)
	}
	return nil
}
