package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/Mohsinsiddi/swapctl/internal/access"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/txflow"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	allowRevoke     bool
	allowedContract string
)

var depositCmd = &cobra.Command{
	Use:   "deposit <eth|steth> <amount>",
	Short: "Deposit ETH or stETH into the swapper",
	Example: `  swapctl deposit eth 1.5
  swapctl deposit steth 0.25`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"eth", "steth"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := pickKind(args[0], map[string]contract.Kind{
			"eth":   contract.KindDepositEth,
			"steth": contract.KindDepositSteth,
		})
		if err != nil {
			return err
		}
		return runAction(cmd, contract.Action{Kind: kind, Amount: args[1]})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <eth|steth|all> <amount>",
	Short: "Withdraw ETH or stETH from the swapper",
	Long: `Withdraw ETH or stETH from the swapper. "all" calls the owner-only
withdraw(amount) of the swapper.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"eth", "steth", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := pickKind(args[0], map[string]contract.Kind{
			"eth":   contract.KindWithdrawEth,
			"steth": contract.KindWithdrawSteth,
			"all":   contract.KindWithdraw,
		})
		if err != nil {
			return err
		}
		return runAction(cmd, contract.Action{Kind: kind, Amount: args[1]})
	},
}

var nftCmd = &cobra.Command{
	Use:   "nft",
	Short: "Manage the swapper's withdrawal NFTs",
}

var nftTransferCmd = &cobra.Command{
	Use:   "transfer <tokenId>",
	Short: "Move a withdrawal NFT from the swapper to your wallet (owner only)",
	Long: `Move a Lido withdrawal NFT held by the swapper to the connected wallet.
The swapper calls transferFrom on the withdrawal queue through execute().`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, contract.Action{Kind: contract.KindTransferNFT, TokenID: args[0]})
	},
}

var allowCmd = &cobra.Command{
	Use:   "allow <address>",
	Short: "Add an address to the allow-list, or remove it with --revoke (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, contract.Action{Kind: contract.KindSetAllowed, Account: args[0], Allow: !allowRevoke})
	},
}

var allowedCmd = &cobra.Command{
	Use:   "allowed <address>",
	Short: "Check whether an address is allow-listed on the active swapper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openReadSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()
		account, err := addressArg(cmd.Context(), s, args[0])
		if err != nil {
			return err
		}

		swapper, _, err := activeSwapper(cmd.Context(), s, allowedContract)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()
		st, err := access.CheckOne(ctx, s.client, account, swapper)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Allow-list", [][2]string{
			{"Contract", st.Contract.Hex()},
			{"Address", account.Hex()},
			{"Allowed", ui.YesNo(st.IsAllowed)},
			{"Owner", ui.YesNo(st.IsOwner)},
		}))
		return nil
	},
}

func pickKind(arg string, kinds map[string]contract.Kind) (contract.Kind, error) {
	k, ok := kinds[arg]
	if !ok {
		names := make([]string, 0, len(kinds))
		for name := range kinds {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("unknown asset %q (one of %v)", arg, names)
	}
	return k, nil
}

// runAction validates a, selects the swapper the wallet may operate, checks
// owner-only kinds and submits the call through a form.
func runAction(cmd *cobra.Command, a contract.Action) error {
	if err := a.CheckInputs(); err != nil {
		return err
	}
	ctx := cmd.Context()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := selectSwapper(ctx, s, s.account())
	if err != nil {
		return err
	}
	if err := authorize(s.account(), res, a.Kind); err != nil {
		return err
	}
	a.Swapper = res.Contract
	fmt.Fprintln(cmd.OutOrStdout(), ui.Meta(fmt.Sprintf("%s on %s (%s)", a.Kind.Label(), res.Contract.Hex(), s.network.DisplayName)))

	switch a.Kind {
	case contract.KindTransferNFT:
		if s.network.WithdrawalQueue == (common.Address{}) {
			return fmt.Errorf("%w: no withdrawal queue on %s", contract.ErrUnavailable, s.network.DisplayName)
		}
		a.NFT = s.network.WithdrawalQueue
		a.Caller = s.account()
	case contract.KindDepositSteth:
		if err := ensureStethAllowance(cmd, s, a.Swapper, a.Amount); err != nil {
			return err
		}
	}

	f, rep := newForm(cmd, s, string(a.Kind))
	switch a.Kind {
	case contract.KindSetAllowed:
		target := common.HexToAddress(a.Account)
		f.Refresh("allowed", func(ctx context.Context) error {
			ok, err := contract.NewSwapper(s.client, a.Swapper).Allowed(ctx, target)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta(fmt.Sprintf("%s allowed: %s", target.Hex(), ui.YesNo(ok))))
			return nil
		})
	default:
		f.Refresh("balances", func(ctx context.Context) error {
			return printSwapperBalance(ctx, cmd, s, a.Swapper)
		})
	}

	_, err = f.SubmitAction(ctx, a)
	return settle(cmd, f, rep, err)
}

// authorize checks that the probe result lets account run kind.
func authorize(account common.Address, res access.Result, kind contract.Kind) error {
	if !res.Permitted {
		return fmt.Errorf("%w: %s is neither owner nor allow-listed on any candidate swapper", errNotPermitted, account.Hex())
	}
	if kind.OwnerOnly() && !res.IsOwner {
		return fmt.Errorf("%w: %s is only available to the owner of %s", errOwnerOnly, kind.Label(), res.Contract.Hex())
	}
	return nil
}

// ensureStethAllowance approves the swapper for amount stETH when the
// current allowance is lower.
func ensureStethAllowance(cmd *cobra.Command, s *session, swapper common.Address, amount string) error {
	if s.network.StETH == (common.Address{}) {
		return fmt.Errorf("%w: stETH is not deployed on %s", contract.ErrUnavailable, s.network.DisplayName)
	}
	amt, err := chain.ParseEther(amount)
	if err != nil {
		return err
	}

	readCtx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
	current, err := contract.NewToken(s.client, s.network.StETH).Allowance(readCtx, s.account(), swapper)
	cancel()
	if err != nil {
		return fmt.Errorf("reading stETH allowance: %w", err)
	}
	if current.Cmp(amt) >= 0 {
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("stETH allowance is %s, approving the swapper for %s first", chain.FormatEther(current), chain.FormatEther(amt))))
	call, err := contract.NewCall(contract.MustABI(contract.IDToken), s.network.StETH, nil, "approve", swapper, amt)
	if err != nil {
		return err
	}
	f, rep := newForm(cmd, s, "approve")
	_, err = f.Submit(cmd.Context(), call)
	return settle(cmd, f, rep, err)
}

func printSwapperBalance(ctx context.Context, cmd *cobra.Command, s *session, swapper common.Address) error {
	sw := contract.NewSwapper(s.client, swapper)
	mine, err := sw.Balances(ctx, s.account())
	if err != nil {
		return err
	}
	total, err := sw.TotalEth(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Swapper", [][2]string{
		{"Your balance", chain.FormatEther(mine) + " ETH"},
		{"Total ETH", chain.FormatEther(total) + " ETH"},
	}))
	return nil
}

// settle maps the outcome of a form submission to the command result. The
// reporter has already printed confirmations, failures and rejections.
func settle(cmd *cobra.Command, f *txflow.Form, rep *ui.FormReporter, err error) error {
	rep.Close()
	switch {
	case err == nil, declined(err):
		return err
	case f.State() == txflow.Failed:
		return errReported
	case f.State() == txflow.Submitted:
		fmt.Fprintln(cmd.OutOrStdout(), ui.Warn(fmt.Sprintf("Stopped waiting, %s is still pending. Resume with `swapctl tx wait %s`", f.Hash().Hex(), f.Hash().Hex())))
		return errReported
	}
	return err
}

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Track transactions",
}

var txWaitCmd = &cobra.Command{
	Use:   "wait <hash>",
	Short: "Wait for a submitted transaction to be mined",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := args[0]
		if len(raw) != 66 || raw[:2] != "0x" {
			return fmt.Errorf("%q is not a transaction hash", raw)
		}
		hash := common.HexToHash(raw)

		s, err := openSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.close()

		f, rep := newForm(cmd, s, "wait")
		_, err = f.Resume(cmd.Context(), hash)
		return settle(cmd, f, rep, err)
	},
}

func init() {
	nftCmd.AddCommand(nftTransferCmd)
	allowCmd.Flags().BoolVar(&allowRevoke, "revoke", false, "remove the address from the allow-list")
	allowedCmd.Flags().StringVar(&allowedContract, "contract", "", "swapper address (default: probe candidates)")
	txCmd.AddCommand(txWaitCmd)
}
