package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/rpc"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Inspect RPC endpoints",
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the RPC endpoints considered for the network",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render("RPCs for "+n.DisplayName))
		if cfg.RPCURL != "" {
			fmt.Fprintln(out, ui.Warn("rpc_url is pinned to "+cfg.RPCURL+"; selection is skipped"))
		}
		custom := cfg.GetRPCs(n.Name)
		for _, u := range rpc.URLs(n, custom) {
			tag := ui.Meta("(built-in)")
			for _, c := range custom {
				if c == u {
					tag = ui.Meta("(custom)")
				}
			}
			fmt.Fprintf(out, "  %s %s\n", tag, u)
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Benchmark the network's RPC endpoints and show which one would be picked",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		spin := ui.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Benchmarking %s RPCs...", n.DisplayName))
		spin.Start()
		results := rpc.Benchmark(ctx, rpc.URLs(n, cfg.GetRPCs(n.Name)), log)
		spin.Stop()

		t := ui.NewTable(
			ui.Column{Title: "RPC URL", Width: 44},
			ui.Column{Title: "Latency", Width: 10},
			ui.Column{Title: "Block #", Width: 12},
			ui.Column{Title: "Status", Width: 10},
		)
		for _, r := range results {
			latency, block, status := fmt.Sprintf("%dms", r.Latency.Milliseconds()), fmt.Sprint(r.BlockNumber), ui.Success("up")
			if !r.Healthy() {
				latency, block, status = "-", "-", ui.Err("down")
			}
			t.AddRow(r.URL, latency, block, status)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())

		best, err := rpc.NewPicker(algo).Pick(results)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s picks %s", algo, best.URL)))
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcListCmd, rpcBenchmarkCmd)
}
