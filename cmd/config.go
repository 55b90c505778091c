package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/manifest"
	"github.com/Mohsinsiddi/swapctl/internal/rpc"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configSetNetworkCmd = &cobra.Command{
	Use:   "set-network <name>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q (known: %v)", args[0], chain.NewRegistry().Names())
		}
		cfg.DefaultNetwork = n.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %s", ui.NetworkName(n.DisplayName))))
		return nil
	},
}

var configSetWalletCmd = &cobra.Command{
	Use:   "set-wallet <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return useWallet(cmd, args[0])
	},
}

var configAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q", args[0])
		}
		if err := cfg.AddRPC(n.Name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.NetworkName(n.Name), args[1])))
		return nil
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC for %s: %s", args[0], args[1])))
		return nil
	},
}

var configSetAlgorithmCmd = &cobra.Command{
	Use:   "set-rpc-algorithm <fastest|round-robin|failover>",
	Short: "Set how the RPC endpoint is chosen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(args[0])
		if err != nil {
			return err
		}
		cfg.RPCAlgorithm = string(algo)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC algorithm set to %q", algo)))
		return nil
	},
}

var configAddContractCmd = &cobra.Command{
	Use:   "add-contract <address>",
	Short: "Append a candidate swapper contract",
	Long: `Append a candidate swapper contract. Candidates are probed in the order
they were added; the first one the wallet owns or is allow-listed on is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddContract(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Contract %s added as candidate #%d", ui.Addr(args[0]), len(cfg.Contracts))))
		return nil
	},
}

var configRemoveContractCmd = &cobra.Command{
	Use:   "remove-contract <address>",
	Short: "Remove a candidate swapper contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveContract(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Contract %s removed", ui.Addr(args[0]))))
		return nil
	},
}

var configSyncCmd = &cobra.Command{
	Use:   "sync <manifest-url>",
	Short: "Import candidate contracts from a deployments manifest",
	Long: `Fetch a JSON manifest of the form
  {"contracts": {"mainnet": ["0x...", "0x..."]}}
and append the selected network's contracts that are not configured yet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		added, err := manifest.New(log).Sync(ctx, args[0], n.Name, cfg)
		if err != nil {
			return err
		}
		if len(added) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Nothing new for "+n.Name))
			return nil
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		for _, a := range added {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Added "+ui.Addr(a.Hex())))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(
		configListCmd,
		configSetNetworkCmd,
		configSetWalletCmd,
		configAddRPCCmd,
		configRemoveRPCCmd,
		configSetAlgorithmCmd,
		configAddContractCmd,
		configRemoveContractCmd,
		configSyncCmd,
	)
}
