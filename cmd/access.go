package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/Mohsinsiddi/swapctl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var accessAccount string

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Find the swapper contract the wallet may operate",
	Long: `Probe the candidate swapper contracts in order and report the first one
the account owns or is allow-listed on. Owner-only commands (withdraw all,
nft transfer, allow) are enabled only when the account is the owner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openReadSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		account := s.account()
		if accessAccount != "" {
			if account, err = addressArg(cmd.Context(), s, accessAccount); err != nil {
				return err
			}
		}
		if account == (common.Address{}) {
			return wallet.ErrNoWallet
		}

		res, err := selectSwapper(cmd.Context(), s, account)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderAccess(displayName(cmd.Context(), s, account), res))
		if !res.Permitted {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn("Account is neither owner nor allow-listed on any candidate"))
		}
		return nil
	},
}

func init() {
	accessCmd.Flags().StringVar(&accessAccount, "account", "", "address to check (default: selected wallet)")
}
