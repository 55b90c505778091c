package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/Mohsinsiddi/swapctl/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKey      string
	walletKeyStdin bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a signing wallet (--key) or a watch-only address",
	Example: `  swapctl wallet add ops --key-stdin < key.txt
  swapctl wallet add treasury 0xAbC...`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		key := walletKey
		if walletKeyStdin {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading key from stdin: %w", err)
			}
			key = strings.TrimSpace(line)
		}

		signing := key != ""
		mgr, err := newWalletManager(signing)
		if err != nil {
			return err
		}

		var w *wallet.Wallet
		switch {
		case signing:
			if len(args) == 2 {
				return fmt.Errorf("pass either an address or a key, not both")
			}
			if w, err = mgr.AddWithKey(name, key); err != nil {
				return err
			}
		case len(args) == 2:
			addr, err := chain.ParseAddress(args[1])
			if err != nil {
				return err
			}
			if err := mgr.AddWatchOnly(name, addr); err != nil {
				return err
			}
			if w, err = mgr.Get(name); err != nil {
				return err
			}
		default:
			return fmt.Errorf("an address or --key is required")
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wallet %q added (%s) %s", w.Name, w.Type, ui.Addr(w.Address))))
		if signing {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Key stored in the OS keychain"))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("No wallets. Add one with `swapctl wallet add`."))
			return nil
		}
		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 16},
			ui.Column{Title: "Address", Width: 44},
			ui.Column{Title: "Type", Width: 11},
			ui.Column{Title: "Default", Width: 8},
		)
		for _, w := range wallets {
			def := ""
			if w.IsDefault || w.Name == cfg.DefaultWallet {
				def = ui.StyleSuccess.Render("*")
			}
			t.AddRow(w.Name, ui.Addr(w.Address), w.Type, def)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		w, err := mgr.Get(args[0])
		if err != nil {
			return err
		}
		if w.Type == wallet.TypeSigning {
			if !assumeYes && !ui.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).ConfirmDanger(fmt.Sprintf("Delete wallet %q and its private key?", w.Name)) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled"))
				return nil
			}
			if mgr, err = newWalletManager(true); err != nil {
				return err
			}
		}
		if err := mgr.Remove(w.Name); err != nil {
			return err
		}
		if cfg.DefaultWallet == w.Name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wallet %q removed", w.Name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a wallet the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return useWallet(cmd, args[0])
	},
}

func useWallet(cmd *cobra.Command, name string) error {
	mgr, err := newWalletManager(false)
	if err != nil {
		return err
	}
	if err := mgr.SetDefault(name); err != nil {
		return err
	}
	cfg.DefaultWallet = name
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q", name)))
	return nil
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKey, "key", "", "hex private key (stored in the OS keychain)")
	walletAddCmd.Flags().BoolVar(&walletKeyStdin, "key-stdin", false, "read the private key from stdin")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}
