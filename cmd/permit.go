package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/swapctl/internal/authz"
	"github.com/spf13/cobra"
)

var permitCmd = &cobra.Command{
	Use:   "permit",
	Short: "EIP-2612 permit: sign, use, then transfer",
	Long: `Three steps, usually run by two wallets:

  1. the owner signs:        swapctl permit create <token> <spender> <amount>
  2. the spender submits it: swapctl permit use <file>
  3. the spender pulls:      swapctl permit transfer <file> <recipient>`,
}

var permitCreateCmd = &cobra.Command{
	Use:   "create <token> <spender> <amount>",
	Short: "Sign a permit and save it to a file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return createAuthorization(cmd, authz.SchemePermit, args)
	},
}

var permitUseCmd = &cobra.Command{
	Use:   "use <file>",
	Short: "Submit permit(owner, spender, value, deadline, v, r, s)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadPermit(args[0])
		if err != nil {
			return err
		}
		return submitAuthorization(cmd, a)
	},
}

var permitTransferCmd = &cobra.Command{
	Use:   "transfer <file> <recipient>",
	Short: "Spend a used permit: transferFrom(owner, recipient, value)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadPermit(args[0])
		if err != nil {
			return err
		}
		s, err := openSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.close()

		recipient, err := addressArg(cmd.Context(), s, args[1])
		if err != nil {
			return err
		}
		call, err := a.TransferCall(recipient)
		if err != nil {
			return err
		}
		if s.account() != a.Spender {
			return fmt.Errorf("only the spender %s can transfer with this permit (connected: %s)", a.Spender.Hex(), s.account().Hex())
		}

		f, rep := newForm(cmd, s, "permit-transfer")
		_, err = f.Submit(cmd.Context(), call)
		return settle(cmd, f, rep, err)
	},
}

func loadPermit(path string) (*authz.Authorization, error) {
	a, err := loadAuthorization(path)
	if err != nil {
		return nil, err
	}
	if a.Scheme != authz.SchemePermit {
		return nil, fmt.Errorf("%s holds a %s, not a permit", path, a.Scheme)
	}
	return a, nil
}

func init() {
	addAuthzCreateFlags(permitCreateCmd)
	permitCmd.AddCommand(permitCreateCmd, permitUseCmd, permitTransferCmd)
}
