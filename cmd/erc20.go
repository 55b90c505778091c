package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/swapctl/internal/authz"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var erc20Cmd = &cobra.Command{
	Use:   "erc20",
	Short: "ERC-20 helpers (balance, allowance, approve, transferFrom)",
	Long: `ERC-20 helpers. <token> is a 0x address or a preset symbol from
` + "`swapctl tokens`" + ` (stETH, USDC, USDS).`,
}

var erc20BalanceCmd = &cobra.Command{
	Use:   "balance <token> [account]",
	Short: "Show a token balance",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := tokenArg(args[0])
		if err != nil {
			return err
		}
		s, err := openReadSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		account := s.account()
		if len(args) == 2 {
			if account, err = addressArg(cmd.Context(), s, args[1]); err != nil {
				return err
			}
		}
		if account == (common.Address{}) {
			return fmt.Errorf("no account: pass one or select a wallet")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()
		t := contract.NewToken(s.client, token)
		meta := tokenMeta(ctx, t)
		bal, err := t.BalanceOf(ctx, account)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(meta.symbol+" balance", [][2]string{
			{"Token", token.Hex()},
			{"Account", account.Hex()},
			{"Balance", chain.FormatUnits(bal, meta.decimals) + " " + meta.symbol},
		}))
		return nil
	},
}

var erc20AllowanceCmd = &cobra.Command{
	Use:   "allowance <token> <owner> <spender>",
	Short: "Show how much spender may move on behalf of owner",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := tokenArg(args[0])
		if err != nil {
			return err
		}
		s, err := openReadSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()
		owner, err := addressArg(cmd.Context(), s, args[1])
		if err != nil {
			return err
		}
		spender, err := addressArg(cmd.Context(), s, args[2])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()
		t := contract.NewToken(s.client, token)
		meta := tokenMeta(ctx, t)
		allowance, err := t.Allowance(ctx, owner, spender)
		if err != nil {
			return err
		}
		ownerBal, ownerErr := t.BalanceOf(ctx, owner)
		spenderBal, spenderErr := t.BalanceOf(ctx, spender)
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(meta.symbol+" allowance", [][2]string{
			{"Owner", owner.Hex()},
			{"Spender", spender.Hex()},
			{"Allowance", chain.FormatUnits(allowance, meta.decimals) + " " + meta.symbol},
			{"Owner balance", amountOrErr(ownerBal, ownerErr, meta)},
			{"Spender balance", amountOrErr(spenderBal, spenderErr, meta)},
		}))
		return nil
	},
}

var erc20ApproveCmd = &cobra.Command{
	Use:   "approve <token> <spender> <amount>",
	Short: "Approve spender to move amount of your tokens",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitTokenCall(cmd, "approve", args[0], args[2], args[1])
	},
}

var erc20TransferFromCmd = &cobra.Command{
	Use:   "transfer-from <token> <from> <to> <amount>",
	Short: "Move tokens from an owner who approved you",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitTokenCall(cmd, "transferFrom", args[0], args[3], args[1], args[2])
	},
}

// submitTokenCall sends method(addresses..., amount) to the token, with
// amount parsed using the token's decimals.
func submitTokenCall(cmd *cobra.Command, method, tokenStr, amountStr string, addresses ...string) error {
	token, err := tokenArg(tokenStr)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.close()

	args := make([]interface{}, 0, len(addresses)+1)
	for _, a := range addresses {
		addr, err := addressArg(cmd.Context(), s, a)
		if err != nil {
			return err
		}
		args = append(args, addr)
	}

	readCtx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
	meta := tokenMeta(readCtx, contract.NewToken(s.client, token))
	cancel()
	amount, err := chain.ParsePositiveUnits(amountStr, meta.decimals)
	if err != nil {
		return err
	}

	call, err := contract.NewCall(contract.MustABI(contract.IDToken), token, nil, method, append(args, amount)...)
	if err != nil {
		return err
	}
	f, rep := newForm(cmd, s, "erc20-"+method)
	_, err = f.Submit(cmd.Context(), call)
	return settle(cmd, f, rep, err)
}

// tokenArg resolves a preset symbol or a 0x address.
func tokenArg(s string) (common.Address, error) {
	if p, ok := authz.LookupPreset(s); ok {
		return p.Address, nil
	}
	return chain.ParseAddress(s)
}

type tokenDisplay struct {
	symbol   string
	decimals int
}

// tokenMeta reads symbol and decimals, falling back to the preset list and
// then to "tokens" with 18 decimals.
func tokenMeta(ctx context.Context, t *contract.Token) tokenDisplay {
	d := tokenDisplay{symbol: "tokens", decimals: chain.EtherDecimals}
	if p, ok := authz.LookupPreset(t.Address().Hex()); ok {
		d.symbol, d.decimals = p.Symbol, int(p.Decimals)
	}
	if sym, err := t.Symbol(ctx); err == nil && sym != "" {
		d.symbol = sym
	}
	if dec, err := t.Decimals(ctx); err == nil {
		d.decimals = int(dec)
	} else {
		log.WithError(err).WithField("token", t.Address().Hex()).Debug("decimals unavailable, using fallback")
	}
	return d
}

func amountOrErr(v *big.Int, err error, meta tokenDisplay) string {
	if err != nil {
		return ui.Err("unavailable")
	}
	return chain.FormatUnits(v, meta.decimals) + " " + meta.symbol
}

func init() {
	erc20Cmd.AddCommand(erc20BalanceCmd, erc20AllowanceCmd, erc20ApproveCmd, erc20TransferFromCmd)
}
