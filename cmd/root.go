package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/swapctl/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	log         *logrus.Logger
	verbose     bool
	networkFlag string
	walletFlag  string
	assumeYes   bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "swapctl",
	Short: "Operate an ETH/stETH swapper contract from the terminal",
	Long: `swapctl drives a deployed swapper contract: deposits and withdrawals of
ETH and stETH, the allow-list, the withdrawal NFT, and signed ERC-20
authorizations (EIP-2612 permit, EIP-3009 transfer-with-authorization).

Candidate swapper contracts are probed in the configured order and the first
one the wallet owns or is allow-listed on becomes active.

Configuration lives in ~/.swapctl/config.json and can be overridden with
SWAPCTL_* environment variables or a .env file.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logging.New(logging.Options{Verbose: verbose, Out: cmd.ErrOrStderr()})
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command. Interrupts cancel the command context.
// Declining a prompt is not a failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil && !declined(err) {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, errorLine(err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $SWAPCTL_CONFIG_DIR or ~/.swapctl)")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network (default: config)")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: config)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve every prompt")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		configCmd,
		networkCmd,
		rpcCmd,
		walletCmd,
		accessCmd,
		statusCmd,
		depositCmd,
		withdrawCmd,
		nftCmd,
		allowCmd,
		allowedCmd,
		erc20Cmd,
		permitCmd,
		authzCmd,
		tokensCmd,
		serveCmd,
		txCmd,
	)
}
