package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Token reads ERC-20 state, including the permit and EIP-3009 extensions.
type Token struct {
	r reader
}

// NewToken binds the token ABI to an address.
func NewToken(caller ethereum.ContractCaller, address common.Address) *Token {
	return &Token{r: reader{caller: caller, abi: MustABI(IDToken), address: address}}
}

// Address is the bound token address.
func (t *Token) Address() common.Address { return t.r.address }

func (t *Token) Name(ctx context.Context) (string, error) {
	return one[string](ctx, t.r, "name")
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	return one[string](ctx, t.r, "symbol")
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	return one[uint8](ctx, t.r, "decimals")
}

// Version returns version(). Many tokens do not implement it; that surfaces
// as ErrUnavailable or a revert error.
func (t *Token) Version(ctx context.Context) (string, error) {
	return one[string](ctx, t.r, "version")
}

func (t *Token) DomainSeparator(ctx context.Context) ([32]byte, error) {
	return one[[32]byte](ctx, t.r, "DOMAIN_SEPARATOR")
}

// Nonces returns the next EIP-2612 permit nonce of owner.
func (t *Token) Nonces(ctx context.Context, owner common.Address) (*big.Int, error) {
	return one[*big.Int](ctx, t.r, "nonces", owner)
}

func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return one[*big.Int](ctx, t.r, "balanceOf", account)
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return one[*big.Int](ctx, t.r, "allowance", owner, spender)
}

// AuthorizationState reports whether an EIP-3009 nonce has been used or cancelled.
func (t *Token) AuthorizationState(ctx context.Context, authorizer common.Address, nonce [32]byte) (bool, error) {
	return one[bool](ctx, t.r, "authorizationState", authorizer, nonce)
}
