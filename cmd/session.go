package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/swapctl/internal/access"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/ens"
	"github.com/Mohsinsiddi/swapctl/internal/rpc"
	"github.com/Mohsinsiddi/swapctl/internal/txflow"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/Mohsinsiddi/swapctl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// session is one connection to a network, optionally with a signing wallet.
type session struct {
	network *chain.Network
	client  *chain.EVMClient
	// provider is nil for read-only sessions.
	provider *wallet.Provider
	wallet   *wallet.Wallet
}

// account returns the connected address, or the zero address.
func (s *session) account() common.Address {
	if s.wallet == nil {
		return common.Address{}
	}
	return s.wallet.Addr()
}

func (s *session) close() {
	if s.client != nil {
		s.client.Close()
	}
}

// resolveNetwork returns the selected network with configured address
// overrides applied.
func resolveNetwork() (*chain.Network, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	n, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q (known: %v)", name, chain.NewRegistry().Names())
	}
	out := *n
	for _, o := range []struct {
		value string
		dst   *common.Address
		what  string
	}{
		{cfg.StETH, &out.StETH, "steth"},
		{cfg.WETH, &out.WETH, "weth"},
		{cfg.WithdrawalQueue, &out.WithdrawalQueue, "withdrawal_queue"},
	} {
		if o.value == "" {
			continue
		}
		addr, err := chain.ParseAddress(o.value)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", o.what, err)
		}
		*o.dst = addr
	}
	return &out, nil
}

// dial picks an RPC endpoint for n and connects to it.
func dial(ctx context.Context, n *chain.Network) (*chain.EVMClient, error) {
	url := cfg.RPCURL
	if url == "" {
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return nil, err
		}
		pickCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer cancel()
		url, err = rpc.Best(pickCtx, rpc.URLs(n, cfg.GetRPCs(n.Name)), algo, log)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.DisplayName, err)
		}
	}
	log.WithField("rpc", url).Debug("connecting")
	client, err := chain.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return client.WithLogger(log), nil
}

// openReadSession connects without a signer. The wallet, if one resolves,
// only supplies the account address.
func openReadSession(ctx context.Context) (*session, error) {
	n, err := resolveNetwork()
	if err != nil {
		return nil, err
	}
	client, err := dial(ctx, n)
	if err != nil {
		return nil, err
	}
	s := &session{network: n, client: client}
	if mgr, err := newWalletManager(false); err == nil {
		if w, err := mgr.Resolve(walletName()); err == nil {
			s.wallet = w
		}
	}
	return s, nil
}

// openSession connects with the selected signing wallet.
func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	lookup, err := newWalletManager(false)
	if err != nil {
		return nil, err
	}
	w, err := lookup.Resolve(walletName())
	if err != nil {
		return nil, err
	}
	if w.Type != wallet.TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only; add it with --key to sign", w.Name)
	}
	mgr, err := newWalletManager(true)
	if err != nil {
		return nil, err
	}

	n, err := resolveNetwork()
	if err != nil {
		return nil, err
	}
	client, err := dial(ctx, n)
	if err != nil {
		return nil, err
	}
	if id, err := client.ChainID(ctx); err == nil && id.Int64() != n.ChainID {
		client.Close()
		return nil, fmt.Errorf("RPC %s serves chain %s, expected %s (%d)", client.URL(), id, n.DisplayName, n.ChainID)
	}

	signer := wallet.NewSigner(w, mgr.Keystore())
	p := wallet.NewProvider(client, signer, big.NewInt(n.ChainID), approver(cmd), log)
	return &session{network: n, client: client, provider: p, wallet: w}, nil
}

func approver(cmd *cobra.Command) wallet.Approver {
	if assumeYes {
		return wallet.AutoApprove
	}
	return ui.NewApprover(ui.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
}

func walletName() string {
	if walletFlag != "" {
		return walletFlag
	}
	return cfg.DefaultWallet
}

// newWalletManager opens the wallet store. The OS keychain is only opened
// when keys are needed.
func newWalletManager(withKeys bool) (*wallet.Manager, error) {
	opts := []wallet.Option{wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath()))}
	if withKeys {
		ks, err := wallet.DefaultKeystore()
		if err != nil {
			return nil, err
		}
		opts = append(opts, wallet.WithKeystore(ks))
	}
	return wallet.NewManager(opts...), nil
}

// candidates returns the configured swappers, or the network default.
func candidates(n *chain.Network) ([]common.Address, error) {
	list, err := cfg.Candidates()
	if err != nil {
		return nil, err
	}
	if len(list) == 0 && n.DefaultSwapper != (common.Address{}) {
		list = []common.Address{n.DefaultSwapper}
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: add one with `swapctl config add-contract <address>`", access.ErrNoCandidates)
	}
	return list, nil
}

// selectSwapper runs the allow-list probe for account.
func selectSwapper(ctx context.Context, s *session, account common.Address) (access.Result, error) {
	list, err := candidates(s.network)
	if err != nil {
		return access.Result{}, err
	}
	return access.Probe(ctx, s.client, account, list, log, access.WithReadTimeout(config.ReadTimeout))
}

// addressArg parses a 0x address, or resolves an ENS name on the session
// network.
func addressArg(ctx context.Context, s *session, arg string) (common.Address, error) {
	if !ens.IsName(arg) {
		return chain.ParseAddress(arg)
	}
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	addr, err := ens.Resolve(ctx, s.client, arg)
	if err != nil {
		return common.Address{}, err
	}
	log.Debugf("resolved %s to %s", arg, addr.Hex())
	return addr, nil
}

// displayName is addr followed by its ENS name when it has one.
func displayName(ctx context.Context, s *session, addr common.Address) string {
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	if name, err := ens.Lookup(ctx, s.client, addr); err == nil {
		return addr.Hex() + " (" + name + ")"
	}
	return addr.Hex()
}

// newForm creates a form that reports its transitions on the command's
// output.
func newForm(cmd *cobra.Command, s *session, name string) (*txflow.Form, *ui.FormReporter) {
	rep := ui.NewFormReporter(cmd.OutOrStdout(), s.network, !assumeYes)
	f := txflow.New(name, s.provider,
		txflow.WithPollInterval(cfg.PollEvery()),
		txflow.WithLogger(log),
		txflow.WithObserver(rep.Observe),
	)
	return f, rep
}
