package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Swapper reads swapper contract state.
type Swapper struct {
	r reader
}

// NewSwapper binds the swapper ABI to an address.
func NewSwapper(caller ethereum.ContractCaller, address common.Address) *Swapper {
	return &Swapper{r: reader{caller: caller, abi: MustABI(IDSwapper), address: address}}
}

// Address is the bound contract address.
func (s *Swapper) Address() common.Address { return s.r.address }

// Owner returns owner().
func (s *Swapper) Owner(ctx context.Context) (common.Address, error) {
	return one[common.Address](ctx, s.r, "owner")
}

// Allowed returns allowed(account).
func (s *Swapper) Allowed(ctx context.Context, account common.Address) (bool, error) {
	return one[bool](ctx, s.r, "allowed", account)
}

// Balances returns the ETH credited to account in the swapper's ledger.
func (s *Swapper) Balances(ctx context.Context, account common.Address) (*big.Int, error) {
	return one[*big.Int](ctx, s.r, "balances", account)
}

// EthBalance returns getEthBalance().
func (s *Swapper) EthBalance(ctx context.Context) (*big.Int, error) {
	return one[*big.Int](ctx, s.r, "getEthBalance")
}

// StethBalance returns getStethBalance().
func (s *Swapper) StethBalance(ctx context.Context) (*big.Int, error) {
	return one[*big.Int](ctx, s.r, "getStethBalance")
}

// TotalEth returns totalEth().
func (s *Swapper) TotalEth(ctx context.Context) (*big.Int, error) {
	return one[*big.Int](ctx, s.r, "totalEth")
}
