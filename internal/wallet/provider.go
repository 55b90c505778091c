package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/sirupsen/logrus"
)

// ErrUserRejected is returned when the user declines a signature or
// transaction prompt. It is an outcome, not a failure.
var ErrUserRejected = errors.New("request rejected by user")

// RequestKind tells the approver what is being asked for.
type RequestKind string

const (
	RequestTransaction RequestKind = "transaction"
	RequestSignature   RequestKind = "signature"
)

// Request is what the user is asked to approve.
type Request struct {
	Kind  RequestKind
	Title string
	Rows  [][2]string
}

// Approver asks the user to approve a request. It may block indefinitely.
type Approver interface {
	Approve(ctx context.Context, req Request) (bool, error)
}

// ApproveFunc adapts a function to Approver.
type ApproveFunc func(ctx context.Context, req Request) (bool, error)

func (f ApproveFunc) Approve(ctx context.Context, req Request) (bool, error) { return f(ctx, req) }

// AutoApprove approves everything (--yes).
var AutoApprove = ApproveFunc(func(context.Context, Request) (bool, error) { return true, nil })

// Backend is the chain access the provider needs. *chain.EVMClient satisfies it.
type Backend interface {
	ethereum.ContractCaller
	chain.ReceiptFetcher
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Provider is the connected wallet: it owns the account, asks for approval,
// signs and broadcasts.
type Provider struct {
	backend  Backend
	signer   *Signer
	chainID  *big.Int
	approver Approver
	log      logrus.FieldLogger
}

// NewProvider connects a signer to a chain backend.
func NewProvider(backend Backend, signer *Signer, chainID *big.Int, approver Approver, log logrus.FieldLogger) *Provider {
	return &Provider{
		backend:  backend,
		signer:   signer,
		chainID:  chainID,
		approver: approver,
		log:      logging.OrDiscard(log),
	}
}

// Account is the connected address.
func (p *Provider) Account() common.Address { return p.signer.Address() }

// ChainID is the chain the provider signs for.
func (p *Provider) ChainID() *big.Int { return new(big.Int).Set(p.chainID) }

// Caller exposes the backend for read-only calls.
func (p *Provider) Caller() ethereum.ContractCaller { return p.backend }

// SendCall asks the user to approve c, then fills nonce, gas and EIP-1559
// fees, signs and broadcasts. It returns the transaction hash.
func (p *Provider) SendCall(ctx context.Context, c contract.Call) (common.Hash, error) {
	from := p.Account()

	gas, err := p.backend.EstimateGas(ctx, c.Msg(from))
	if err != nil {
		p.log.WithError(err).WithField("method", c.Method).Warn("gas estimation failed, using fallback limit")
		gas = config.GasLimitContractCall
	}
	tip, feeCap, err := p.fees(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	rows := append(c.Preview(),
		[2]string{"From", from.Hex()},
		[2]string{"Gas limit", fmt.Sprint(gas)},
		[2]string{"Max fee", chain.FormatDisplay(feeCap, 9) + " gwei"},
	)
	if err := p.approve(ctx, Request{Kind: RequestTransaction, Title: c.Method, Rows: rows}); err != nil {
		return common.Hash{}, err
	}

	nonce, err := p.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}
	value := c.Value
	if value == nil {
		value = new(big.Int)
	}
	to := c.To
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   p.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      c.Data,
	})

	signed, err := p.signer.SignTx(tx, p.chainID)
	if err != nil {
		return common.Hash{}, err
	}
	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	p.log.WithFields(logrus.Fields{"tx": signed.Hash().Hex(), "method": c.Method, "nonce": nonce}).Info("transaction broadcast")
	return signed.Hash(), nil
}

// SignTypedData asks the user to approve td and signs it.
func (p *Provider) SignTypedData(ctx context.Context, td apitypes.TypedData, rows [][2]string) ([]byte, error) {
	if err := p.approve(ctx, Request{Kind: RequestSignature, Title: td.PrimaryType, Rows: rows}); err != nil {
		return nil, err
	}
	return p.signer.SignTypedData(td)
}

// WaitMined polls for the receipt of hash until it is mined or ctx ends.
func (p *Provider) WaitMined(ctx context.Context, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	return chain.WaitForReceipt(ctx, p.backend, hash, interval, p.log)
}

func (p *Provider) approve(ctx context.Context, req Request) error {
	ok, err := p.approver.Approve(ctx, req)
	if err != nil {
		return fmt.Errorf("approval prompt: %w", err)
	}
	if !ok {
		return ErrUserRejected
	}
	return nil
}

// fees returns (tip, feeCap) with feeCap = 2·baseFee + tip.
func (p *Provider) fees(ctx context.Context) (*big.Int, *big.Int, error) {
	tip, err := p.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("getting tip cap: %w", err)
	}
	head, err := p.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("getting latest header: %w", err)
	}
	base := head.BaseFee
	if base == nil {
		base = new(big.Int)
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(base, big.NewInt(2)), tip)
	return tip, feeCap, nil
}
