package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/authz"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	authzScheme string
	authzOut    string
	authzWindow time.Duration
)

var authzCmd = &cobra.Command{
	Use:   "authz",
	Short: "Signed ERC-20 authorizations (EIP-2612 permit, EIP-3009)",
	Long: `Create, submit and inspect signed ERC-20 authorizations.

"create" signs typed data with the selected wallet and writes the signed
authorization to a JSON file. "submit" broadcasts it from any wallet, so the
signer and the submitter may differ.`,
}

var authzCreateCmd = &cobra.Command{
	Use:   "create <token> <counterparty> <amount>",
	Short: "Sign an authorization and save it to a file",
	Example: `  swapctl authz create USDC 0xRecipient 25 --scheme transfer-with-authorization
  swapctl authz create stETH 0xSpender 1.5 --scheme permit --window 30m`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		scheme, err := authz.ParseScheme(authzScheme)
		if err != nil {
			return err
		}
		return createAuthorization(cmd, scheme, args)
	},
}

var authzSubmitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Broadcast the call that consumes a saved authorization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadAuthorization(args[0])
		if err != nil {
			return err
		}
		return submitAuthorization(cmd, a)
	},
}

var authzStateCmd = &cobra.Command{
	Use:   "state <file>",
	Short: "Show whether a saved authorization has been used or has expired",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadAuthorization(args[0])
		if err != nil {
			return err
		}
		s, err := openReadSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		rows := append(a.Rows(), [2]string{"Expired", ui.YesNo(a.Expired(time.Now()))})
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()
		switch a.Scheme {
		case authz.SchemeTransferWithAuthorization:
			used, err := authz.NonceUsed(ctx, s.client, a.Token, a.Owner, *a.AuthNonce)
			if err != nil {
				return err
			}
			rows = append(rows, [2]string{"Nonce used", ui.YesNo(used)})
		case authz.SchemePermit:
			current, err := contract.NewToken(s.client, a.Token).Nonces(ctx, a.Owner)
			if err != nil {
				return err
			}
			rows = append(rows, [2]string{"Nonce used", ui.YesNo(current.Cmp(a.Nonce) > 0)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Authorization "+a.ID, rows))
		return nil
	},
}

// createAuthorization signs a permit or transfer authorization for
// <token> <counterparty> <amount> and saves it.
func createAuthorization(cmd *cobra.Command, scheme authz.Scheme, args []string) error {
	token, err := tokenArg(args[0])
	if err != nil {
		return err
	}
	window := authzWindow
	if window <= 0 {
		window = cfg.AuthValidity()
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close()
	counterparty, err := addressArg(ctx, s, args[1])
	if err != nil {
		return err
	}

	readCtx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	info, err := authz.ResolveToken(readCtx, s.client, token, s.provider.ChainID(), log)
	if err != nil {
		return err
	}
	if !info.DomainVerified && info.DomainSeparator != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn("Computed domain does not match the token's DOMAIN_SEPARATOR; the signature may be rejected"))
	}
	amount, err := chain.ParsePositiveUnits(args[2], int(info.Decimals))
	if err != nil {
		return err
	}

	b := authz.NewBuilder(s.client, s.provider, authz.WithLogger(log))
	a, err := b.Build(ctx, scheme, authz.Request{
		Token:        info,
		Counterparty: counterparty,
		Amount:       amount,
		Window:       window,
	})
	if err != nil {
		if declined(err) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn("Cancelled, nothing was signed"))
		}
		return err
	}

	path := authzOut
	if path == "" {
		path = filepath.Join(".", fmt.Sprintf("%s-%s.json", a.Scheme, a.ID))
	}
	if err := a.Save(path); err != nil {
		return fmt.Errorf("saving authorization: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.KeyValueBlock("Signed "+string(a.Scheme), append(a.Rows(),
		[2]string{"v", fmt.Sprint(a.V)},
		[2]string{"r", a.R.Hex()},
		[2]string{"s", a.S.Hex()},
		[2]string{"Digest", a.Digest.Hex()},
	)))
	fmt.Fprintln(out, ui.Success("Saved to "+path))
	return nil
}

// submitAuthorization broadcasts permit(...) or transferWithAuthorization(...).
func submitAuthorization(cmd *cobra.Command, a *authz.Authorization) error {
	if a.Expired(time.Now()) {
		return fmt.Errorf("authorization %s has expired", a.ID)
	}
	call, err := a.Call()
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.close()
	if a.ChainID != nil && a.ChainID.Int64() != s.network.ChainID {
		return fmt.Errorf("authorization is for chain %s, connected to %s (%d)", a.ChainID, s.network.DisplayName, s.network.ChainID)
	}

	f, rep := newForm(cmd, s, string(a.Scheme))
	_, err = f.Submit(cmd.Context(), call)
	return settle(cmd, f, rep, err)
}

func loadAuthorization(path string) (*authz.Authorization, error) {
	a, err := authz.LoadAuthorization(path)
	if err != nil {
		return nil, fmt.Errorf("loading authorization: %w", err)
	}
	return a, nil
}

func addAuthzCreateFlags(c *cobra.Command) {
	c.Flags().StringVarP(&authzOut, "out", "o", "", "output file (default: ./<scheme>-<id>.json)")
	c.Flags().DurationVar(&authzWindow, "window", 0, "validity window (default: config auth_window)")
}

func init() {
	authzCreateCmd.Flags().StringVar(&authzScheme, "scheme", string(authz.SchemeTransferWithAuthorization), "permit or transfer-with-authorization")
	addAuthzCreateFlags(authzCreateCmd)
	authzCmd.AddCommand(authzCreateCmd, authzSubmitCmd, authzStateCmd)
}
