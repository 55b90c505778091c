package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show supported networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks and their protocol addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 10},
			ui.Column{Title: "Display", Width: 16},
			ui.Column{Title: "Chain ID", Width: 10},
			ui.Column{Title: "stETH", Width: 13},
			ui.Column{Title: "Queue", Width: 13},
			ui.Column{Title: "Swapper", Width: 13},
		)
		for _, name := range reg.Names() {
			n, _ := reg.GetByName(name)
			label := ui.NetworkName(n.Name)
			if n.Name == cfg.DefaultNetwork {
				label += ui.StyleSuccess.Render("*")
			}
			t.AddRow(
				label,
				n.DisplayName,
				fmt.Sprint(n.ChainID),
				shortAddr(n.StETH),
				shortAddr(n.WithdrawalQueue),
				shortAddr(n.DefaultSwapper),
			)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("* default network; addresses can be overridden in config"))
		return nil
	},
}

func shortAddr(a common.Address) string {
	if a == (common.Address{}) {
		return ui.Meta("-")
	}
	return ui.TruncateAddr(a.Hex())
}

func init() {
	networkCmd.AddCommand(networkListCmd)
}
