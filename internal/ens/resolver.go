// Package ens resolves ENS names so address arguments can be given as
// "name.eth".
package ens

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ErrNotFound is returned when a name or reverse record does not resolve.
var ErrNotFound = errors.New("ENS record not found")

// Registry is the ENS registry, deployed at the same address on mainnet,
// Sepolia and Holesky.
var Registry = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

var (
	selResolver = []byte{0x01, 0x78, 0xb8, 0xbf} // resolver(bytes32)
	selAddr     = []byte{0x3b, 0x3b, 0x57, 0xde} // addr(bytes32)
	selName     = []byte{0x69, 0x1f, 0x34, 0x31} // name(bytes32)
)

// IsName reports whether s should be resolved rather than parsed as an
// address.
func IsName(s string) bool {
	s = strings.TrimSpace(s)
	return !strings.HasPrefix(strings.ToLower(s), "0x") && strings.Contains(s, ".")
}

// Namehash implements the EIP-137 namehash. Names are expected to be
// normalised already; labels are hashed as given.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak256([]byte(labels[i]))
		node = common.BytesToHash(keccak256(node[:], label))
	}
	return node
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Resolve returns the address record of name.
func Resolve(ctx context.Context, caller ethereum.ContractCaller, name string) (common.Address, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	node := Namehash(name)
	resolver, err := resolverOf(ctx, caller, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	out, err := call(ctx, caller, resolver, selAddr, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("querying resolver for %s: %w", name, err)
	}
	addr := wordAddress(out)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no address for %s", ErrNotFound, name)
	}
	return addr, nil
}

// Lookup returns the primary name of addr. The name must resolve back to
// addr, otherwise ErrNotFound is returned.
func Lookup(ctx context.Context, caller ethereum.ContractCaller, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(addr.Hex()[2:]) + ".addr.reverse")
	resolver, err := resolverOf(ctx, caller, node)
	if err != nil {
		return "", fmt.Errorf("reverse record of %s: %w", addr.Hex(), err)
	}
	out, err := call(ctx, caller, resolver, selName, node)
	if err != nil {
		return "", fmt.Errorf("querying reverse resolver: %w", err)
	}
	name, err := decodeString(out)
	if err != nil || name == "" {
		return "", fmt.Errorf("%w: no name for %s", ErrNotFound, addr.Hex())
	}

	forward, err := Resolve(ctx, caller, name)
	if err != nil || forward != addr {
		return "", fmt.Errorf("%w: %s does not resolve back to %s", ErrNotFound, name, addr.Hex())
	}
	return name, nil
}

func resolverOf(ctx context.Context, caller ethereum.ContractCaller, node common.Hash) (common.Address, error) {
	out, err := call(ctx, caller, Registry, selResolver, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("querying registry: %w", err)
	}
	r := wordAddress(out)
	if r == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no resolver set", ErrNotFound)
	}
	return r, nil
}

func call(ctx context.Context, caller ethereum.ContractCaller, to common.Address, selector []byte, node common.Hash) ([]byte, error) {
	data := append(append([]byte{}, selector...), node[:]...)
	return caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

// wordAddress reads an address from the first 32-byte return word. Short
// or dirty words yield the zero address.
func wordAddress(out []byte) common.Address {
	if len(out) < 32 || !bytes.Equal(out[:12], make([]byte, 12)) {
		return common.Address{}
	}
	return common.BytesToAddress(out[12:32])
}

var stringArgs = abi.Arguments{{Type: mustType("string")}}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

func decodeString(out []byte) (string, error) {
	vals, err := stringArgs.Unpack(out)
	if err != nil {
		return "", err
	}
	s, _ := vals[0].(string)
	return s, nil
}
