package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// WithdrawalStatus is one entry of getWithdrawalStatus.
type WithdrawalStatus struct {
	AmountOfStETH  *big.Int
	AmountOfShares *big.Int
	Owner          common.Address
	Timestamp      *big.Int
	IsFinalized    bool
	IsClaimed      bool
}

// State is "Claimed", "Finalized" or "Pending".
func (w WithdrawalStatus) State() string {
	switch {
	case w.IsClaimed:
		return "Claimed"
	case w.IsFinalized:
		return "Finalized"
	default:
		return "Pending"
	}
}

// WithdrawalQueue reads the Lido withdrawal queue.
type WithdrawalQueue struct {
	r reader
}

// NewWithdrawalQueue binds the queue ABI to an address.
func NewWithdrawalQueue(caller ethereum.ContractCaller, address common.Address) *WithdrawalQueue {
	return &WithdrawalQueue{r: reader{caller: caller, abi: MustABI(IDWithdrawalQueue), address: address}}
}

// Address is the bound queue address (also the withdrawal NFT).
func (q *WithdrawalQueue) Address() common.Address { return q.r.address }

// Requests lists the request IDs owned by owner.
func (q *WithdrawalQueue) Requests(ctx context.Context, owner common.Address) ([]*big.Int, error) {
	return one[[]*big.Int](ctx, q.r, "getWithdrawalRequests", owner)
}

// Statuses returns one status per request ID, in the same order.
func (q *WithdrawalQueue) Statuses(ctx context.Context, ids []*big.Int) ([]WithdrawalStatus, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	vals, err := q.r.call(ctx, "getWithdrawalStatus", ids)
	if err != nil {
		return nil, err
	}
	var out []WithdrawalStatus
	if err := convert(vals[0], &out); err != nil {
		return nil, fmt.Errorf("decoding getWithdrawalStatus: %w", err)
	}
	return out, nil
}

// convert copies an ABI-decoded tuple slice into a named struct slice.
func convert(in interface{}, out *[]WithdrawalStatus) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	*out = *abi.ConvertType(in, new([]WithdrawalStatus)).(*[]WithdrawalStatus)
	return nil
}
