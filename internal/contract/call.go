package contract

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrUnavailable is returned when a read comes back empty: the contract is not
// deployed at the address or does not implement the function.
var ErrUnavailable = errors.New("contract data unavailable")

// Call describes one contract invocation: the target, the method with its
// ordered arguments, the encoded calldata and an optional ETH value.
type Call struct {
	To     common.Address
	Method string
	Args   []interface{}
	Data   []byte
	Value  *big.Int // nil for non-payable calls
}

// NewCall encodes method(args...) against the given ABI.
func NewCall(a abi.ABI, to common.Address, value *big.Int, method string, args ...interface{}) (Call, error) {
	m, ok := a.Methods[method]
	if !ok {
		return Call{}, fmt.Errorf("method %q not in ABI", method)
	}
	if value != nil && value.Sign() > 0 && !m.IsPayable() {
		return Call{}, fmt.Errorf("method %q is not payable", method)
	}
	data, err := a.Pack(method, args...)
	if err != nil {
		return Call{}, fmt.Errorf("encoding %s: %w", method, err)
	}
	return Call{To: to, Method: method, Args: args, Data: data, Value: value}, nil
}

// Msg returns the call as an ethereum.CallMsg sent from the given address.
func (c Call) Msg(from common.Address) ethereum.CallMsg {
	return ethereum.CallMsg{From: from, To: &c.To, Value: c.Value, Data: c.Data}
}

// Signature renders "method(arg, arg)" for previews.
func (c Call) Signature() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = formatArg(a)
	}
	return c.Method + "(" + strings.Join(parts, ", ") + ")"
}

// Preview is the key/value view of a call shown before the user approves it.
func (c Call) Preview() [][2]string {
	rows := [][2]string{
		{"Contract", c.To.Hex()},
		{"Call", c.Signature()},
	}
	if c.Value != nil && c.Value.Sign() > 0 {
		rows = append(rows, [2]string{"Value", chain.FormatUnits(c.Value, chain.EtherDecimals) + " ETH"})
	}
	rows = append(rows, [2]string{"Calldata", shortHex(c.Data)})
	return rows
}

func formatArg(v interface{}) string {
	switch a := v.(type) {
	case common.Address:
		return a.Hex()
	case *big.Int:
		return a.String()
	case [32]byte:
		return "0x" + hex.EncodeToString(a[:])
	case []byte:
		return shortHex(a)
	case []*big.Int:
		s := make([]string, len(a))
		for i, n := range a {
			s[i] = n.String()
		}
		return "[" + strings.Join(s, ",") + "]"
	default:
		return fmt.Sprint(a)
	}
}

func shortHex(b []byte) string {
	s := "0x" + hex.EncodeToString(b)
	if len(s) > 74 {
		return s[:74] + fmt.Sprintf("… (%d bytes)", len(b))
	}
	return s
}
