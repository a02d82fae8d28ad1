package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/strangelove-ventures/nearcli/history"
)

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently displayed and sent transactions",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("open transaction history: %w", err)
			}
			if store == nil {
				return errors.New("transaction history is disabled in the config")
			}

			f := cmd.Flags()
			filter := history.Filter{}
			filter.Network, _ = f.GetString(FlagNetwork)
			filter.SignerID, _ = f.GetString(FlagSigner)
			filter.Limit, _ = f.GetInt(FlagLimit)
			if filter.Limit < 0 {
				return usagef("--%s must not be negative", FlagLimit)
			}
			entries, err := store.Recent(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No transactions recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tNETWORK\tSIGNER\tRECEIVER\tMODE\tSTATUS\tHASH")
			for _, e := range entries {
				network := e.Network
				if network == "" {
					network = "offline"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), network, e.SignerID, e.ReceiverID, e.Mode, e.Status, e.Hash)
				for _, action := range e.Actions {
					fmt.Fprintf(tw, "\t\t\t%s\t\t\t\t\n", action)
				}
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.String(FlagNetwork, "", "only transactions on this network")
	f.String(FlagSigner, "", "only transactions signed by this account")
	f.Int(FlagLimit, 20, "number of transactions to list, 0 for all")
	return cmd
}
