package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// reader performs view calls against one contract.
type reader struct {
	caller  ethereum.ContractCaller
	abi     abi.ABI
	address common.Address
}

// call packs method(args...), runs it at the latest block and unpacks the
// result. Empty return data yields ErrUnavailable.
func (r reader) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", method, r.address.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s at %s returned no data", ErrUnavailable, method, r.address.Hex())
	}
	vals, err := r.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %s has no outputs", ErrUnavailable, method)
	}
	return vals, nil
}

// one runs call and converts the single return value to T.
func one[T any](ctx context.Context, r reader, method string, args ...interface{}) (T, error) {
	var zero T
	vals, err := r.call(ctx, method, args...)
	if err != nil {
		return zero, err
	}
	v, ok := vals[0].(T)
	if !ok {
		return zero, fmt.Errorf("decoding %s: unexpected type %T", method, vals[0])
	}
	return v, nil
}
