package contract

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

// Kind identifies one swapper operation.
type Kind string

const (
	KindDepositEth    Kind = "deposit-eth"
	KindDepositSteth  Kind = "deposit-steth"
	KindWithdrawEth   Kind = "withdraw-eth"
	KindWithdrawSteth Kind = "withdraw-steth"
	KindWithdraw      Kind = "withdraw"
	KindTransferNFT   Kind = "transfer-nft"
	KindSetAllowed    Kind = "set-allowed"
)

// Field names a user input an action kind requires.
type Field string

const (
	FieldAmount  Field = "amount"
	FieldTokenID Field = "token-id"
	FieldAccount Field = "account"
)

// ErrUnknownKind is returned for an Action with an unregistered Kind.
var ErrUnknownKind = errors.New("unknown action kind")

type kindSpec struct {
	label     string
	fields    []Field
	ownerOnly bool
	build     func(a Action, in inputs) (Call, error)
}

// inputs holds validated, parsed user input.
type inputs struct {
	amount  *big.Int
	tokenID *big.Int
	account common.Address
}

var kinds = map[Kind]kindSpec{
	KindDepositEth: {
		label:  "Deposit ETH",
		fields: []Field{FieldAmount},
		build: func(a Action, in inputs) (Call, error) {
			return NewCall(MustABI(IDSwapper), a.Swapper, in.amount, "depositEth")
		},
	},
	KindDepositSteth: {
		label:  "Deposit stETH",
		fields: []Field{FieldAmount},
		build: func(a Action, in inputs) (Call, error) {
			return NewCall(MustABI(IDSwapper), a.Swapper, nil, "depositSteth", in.amount)
		},
	},
	KindWithdrawEth: {
		label:  "Withdraw ETH",
		fields: []Field{FieldAmount},
		build: func(a Action, in inputs) (Call, error) {
			return NewCall(MustABI(IDSwapper), a.Swapper, nil, "withdrawEth", in.amount)
		},
	},
	KindWithdrawSteth: {
		label:  "Withdraw stETH",
		fields: []Field{FieldAmount},
		build: func(a Action, in inputs) (Call, error) {
			return NewCall(MustABI(IDSwapper), a.Swapper, nil, "withdrawSteth", in.amount)
		},
	},
	KindWithdraw: {
		label:     "Withdraw (owner)",
		fields:    []Field{FieldAmount},
		ownerOnly: true,
		build: func(a Action, in inputs) (Call, error) {
			return NewCall(MustABI(IDSwapper), a.Swapper, nil, "withdraw", in.amount)
		},
	},
	KindTransferNFT: {
		label:     "Transfer withdrawal NFT",
		fields:    []Field{FieldTokenID},
		ownerOnly: true,
		build: func(a Action, in inputs) (Call, error) {
			// The swapper holds the NFT, so it must be the one calling transferFrom.
			inner, err := NewCall(MustABI(IDNFT), a.NFT, nil, "transferFrom", a.Swapper, a.Caller, in.tokenID)
			if err != nil {
				return Call{}, err
			}
			return NewCall(MustABI(IDSwapper), a.Swapper, nil, "execute", a.NFT, new(big.Int), inner.Data)
		},
	},
	KindSetAllowed: {
		label:     "Set allow-list entry",
		fields:    []Field{FieldAccount},
		ownerOnly: true,
		build: func(a Action, in inputs) (Call, error) {
			return NewCall(MustABI(IDSwapper), a.Swapper, nil, "allow", in.account, a.Allow)
		},
	},
}

// Kinds lists every action kind.
func Kinds() []Kind {
	return []Kind{
		KindDepositEth, KindDepositSteth, KindWithdrawEth, KindWithdrawSteth,
		KindWithdraw, KindTransferNFT, KindSetAllowed,
	}
}

// Label is the human name of the kind.
func (k Kind) Label() string { return kinds[k].label }

// Fields lists the inputs the kind requires.
func (k Kind) Fields() []Field { return kinds[k].fields }

// OwnerOnly reports whether only the contract owner may run the kind.
func (k Kind) OwnerOnly() bool { return kinds[k].ownerOnly }

// Action is one swapper operation with the raw user inputs it needs.
// Only the fields listed by Kind.Fields are read.
type Action struct {
	Kind    Kind
	Swapper common.Address

	Amount  string // decimal ether amount
	TokenID string // decimal NFT token ID
	Account string // 0x address for set-allowed
	Allow   bool   // set-allowed: grant (true) or revoke (false)

	// transfer-nft: the withdrawal NFT contract and the receiving account.
	NFT    common.Address
	Caller common.Address
}

// Validate checks every input without touching the network.
func (a Action) Validate() error {
	_, err := a.parse()
	return err
}

// Build validates the action and returns the contract call it performs.
func (a Action) Build() (Call, error) {
	in, err := a.parse()
	if err != nil {
		return Call{}, err
	}
	return kinds[a.Kind].build(a, in)
}

// CheckInputs validates only the user-supplied fields, so bad input is
// reported before a swapper is selected.
func (a Action) CheckInputs() error {
	_, err := a.inputs()
	return err
}

func (a Action) parse() (inputs, error) {
	in, err := a.inputs()
	if err != nil {
		return inputs{}, err
	}
	if a.Swapper == (common.Address{}) {
		return inputs{}, fmt.Errorf("%w: no swapper contract selected", chain.ErrInvalidAddress)
	}
	if a.Kind == KindTransferNFT {
		if a.NFT == (common.Address{}) {
			return inputs{}, fmt.Errorf("%w: withdrawal NFT contract unknown for this network", chain.ErrInvalidAddress)
		}
		if a.Caller == (common.Address{}) {
			return inputs{}, fmt.Errorf("%w: no receiving account", chain.ErrInvalidAddress)
		}
	}
	return in, nil
}

func (a Action) inputs() (inputs, error) {
	spec, ok := kinds[a.Kind]
	if !ok {
		return inputs{}, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}

	var in inputs
	for _, f := range spec.fields {
		var err error
		switch f {
		case FieldAmount:
			in.amount, err = chain.ParseEther(a.Amount)
		case FieldTokenID:
			in.tokenID, err = parseTokenID(a.TokenID)
		case FieldAccount:
			in.account, err = chain.ParseAddress(a.Account)
		}
		if err != nil {
			return inputs{}, fmt.Errorf("%s: %w", f, err)
		}
	}
	return in, nil
}

// parseTokenID accepts a non-negative decimal integer.
func parseTokenID(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty token ID", chain.ErrInvalidAmount)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: token ID %q must be a whole number", chain.ErrInvalidAmount, s)
		}
	}
	n, _ := new(big.Int).SetString(s, 10)
	return n, nil
}
