package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/swapctl/internal/access"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/dashboard"
	"github.com/Mohsinsiddi/swapctl/internal/price"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	statusLive     bool
	statusContract string
	statusCurrency string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show swapper balances and the withdrawal queue",
	Long: `Show the swapper's total ETH, its ETH, stETH and WETH holdings, the
derived total assets and gains, and its Lido withdrawal requests.

With --live the view opens as tabs (balances, withdrawals, access) and
refreshes on the configured poll interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openReadSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		loader, err := dashboard.NewLoader(s.client, dashboard.DefaultWorkers, log)
		if err != nil {
			return err
		}
		defer loader.Release()

		if statusLive {
			m := ui.NewAdminModel(s.network.DisplayName, cfg.PollEvery(), func(ctx context.Context) (ui.AdminData, error) {
				return fetchAdmin(ctx, s, loader)
			})
			return ui.RunAdmin(m)
		}

		spin := ui.NewSpinner(cmd.ErrOrStderr(), "Loading swapper state...")
		spin.Start()
		data, err := fetchAdmin(cmd.Context(), s, loader)
		spin.Stop()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n\n", ui.StyleTitle.Render("Swapper"), ui.NetworkName(s.network.DisplayName))
		fmt.Fprintln(out, ui.RenderBalances(data.Overview))
		if statusCurrency != "" {
			fmt.Fprintln(out, valuation(cmd.Context(), data.Overview))
		}
		fmt.Fprintln(out, ui.RenderWithdrawals(data.Overview))
		return nil
	},
}

// fetchAdmin resolves the active swapper and loads its overview. Without a
// connected account the first candidate is shown.
func fetchAdmin(ctx context.Context, s *session, loader *dashboard.Loader) (ui.AdminData, error) {
	var data ui.AdminData
	swapper, res, err := activeSwapper(ctx, s, statusContract)
	if err != nil {
		return data, err
	}
	if res != nil {
		data.Account = s.account().Hex()
		data.Access = res
	}

	readCtx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	data.Overview, err = loader.Load(readCtx, dashboard.ContractsFor(s.network, swapper))
	return data, err
}

// activeSwapper returns override when set, else the probe result for the
// session account, else the first candidate. The access result is nil when
// no probe ran.
func activeSwapper(ctx context.Context, s *session, override string) (common.Address, *access.Result, error) {
	if override != "" {
		addr, err := chain.ParseAddress(override)
		return addr, nil, err
	}
	if s.account() == (common.Address{}) {
		list, err := candidates(s.network)
		if err != nil {
			return common.Address{}, nil, err
		}
		return list[0], nil, nil
	}
	res, err := selectSwapper(ctx, s, s.account())
	if err != nil {
		return common.Address{}, nil, err
	}
	return res.Contract, &res, nil
}

// valuation prices total assets and gains. Price errors are shown inline.
func valuation(ctx context.Context, ov *dashboard.Overview) string {
	f := price.NewFetcher(statusCurrency)
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	eth, err := f.Price(ctx, price.CoinETH)
	if err != nil {
		log.WithError(err).Debug("price lookup failed")
		return ui.Warn("Valuation unavailable: " + err.Error())
	}
	cur := strings.ToUpper(f.Currency())
	value := func(v *big.Int, ok bool) string {
		if !ok {
			return ui.Meta("-")
		}
		wei := new(big.Float).SetInt(v)
		fiat, _ := new(big.Float).Quo(new(big.Float).Mul(wei, big.NewFloat(eth)), big.NewFloat(1e18)).Float64()
		return fmt.Sprintf("%.2f %s", fiat, cur)
	}
	assets, assetsOK := ov.TotalAssets()
	gains, gainsOK := ov.Gains()
	return ui.KeyValueBlock("Valuation", [][2]string{
		{"ETH price", fmt.Sprintf("%.2f %s", eth, cur)},
		{"Total assets", value(assets, assetsOK)},
		{"Gains", value(gains, gainsOK)},
	})
}

func init() {
	statusCmd.Flags().BoolVar(&statusLive, "live", false, "interactive tabbed view with auto-refresh")
	statusCmd.Flags().StringVar(&statusCurrency, "value-in", "", "also value assets in a currency, e.g. usd")
	statusCmd.Flags().StringVar(&statusContract, "contract", "", "swapper address (default: probe candidates)")
}
