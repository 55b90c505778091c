// Package authz builds and signs EIP-2612 permits and EIP-3009
// transfer-with-authorization payloads.
package authz

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/Mohsinsiddi/swapctl/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrRejected means the user declined to sign. No authorization exists.
var ErrRejected = errors.New("signature request rejected")

// ErrInvalidRequest wraps input problems found before any signing.
var ErrInvalidRequest = errors.New("invalid authorization request")

// TypedSigner is the connected account that signs typed data after the user
// approves. *wallet.Provider implements it.
type TypedSigner interface {
	Account() common.Address
	SignTypedData(ctx context.Context, td apitypes.TypedData, rows [][2]string) ([]byte, error)
}

// Request is what the user asks to authorize. The owner is always the
// signer's account.
type Request struct {
	Token TokenInfo
	// Counterparty is the permit spender or the EIP-3009 recipient.
	Counterparty common.Address
	Amount       *big.Int
	// Window is how long the signature stays valid from now.
	Window time.Duration
}

func (r Request) validate() error {
	switch {
	case r.Token.Name == "" || r.Token.ChainID == nil:
		return fmt.Errorf("%w: token metadata not resolved", ErrInvalidRequest)
	case r.Counterparty == (common.Address{}):
		return fmt.Errorf("%w: counterparty address is zero", ErrInvalidRequest)
	case r.Amount == nil || r.Amount.Sign() <= 0:
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRequest)
	case r.Window <= 0:
		return fmt.Errorf("%w: validity window must be positive", ErrInvalidRequest)
	}
	return nil
}

// Builder creates signed authorizations.
type Builder struct {
	caller ethereum.ContractCaller
	signer TypedSigner
	log    logrus.FieldLogger

	now  func() time.Time
	rand io.Reader
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the time source used for deadlines.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithRand overrides the source of EIP-3009 nonces.
func WithRand(r io.Reader) BuilderOption {
	return func(b *Builder) { b.rand = r }
}

// WithLogger attaches a logger.
func WithLogger(l logrus.FieldLogger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

// NewBuilder creates a Builder reading token state through caller.
func NewBuilder(caller ethereum.ContractCaller, signer TypedSigner, opts ...BuilderOption) *Builder {
	b := &Builder{caller: caller, signer: signer, now: time.Now, rand: rand.Reader}
	for _, opt := range opts {
		opt(b)
	}
	b.log = logging.OrDiscard(b.log)
	return b
}

// Build dispatches on scheme.
func (b *Builder) Build(ctx context.Context, scheme Scheme, req Request) (*Authorization, error) {
	switch scheme {
	case SchemePermit:
		return b.Permit(ctx, req)
	case SchemeTransferWithAuthorization:
		return b.TransferWithAuthorization(ctx, req)
	}
	return nil, fmt.Errorf("%w: unknown scheme %q", ErrInvalidRequest, scheme)
}

// Permit signs Permit(owner, spender, value, nonce, deadline) with the
// owner's current on-chain nonce.
func (b *Builder) Permit(ctx context.Context, req Request) (*Authorization, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	owner := b.signer.Account()
	nonce, err := contract.NewToken(b.caller, req.Token.Address).Nonces(ctx, owner)
	if err != nil {
		return nil, unavailable("nonces()", err)
	}

	a := b.base(SchemePermit, req, owner)
	a.Nonce = nonce
	a.Deadline = big.NewInt(b.now().Add(req.Window).Unix())
	return b.sign(ctx, a)
}

// TransferWithAuthorization signs TransferWithAuthorization(from, to, value,
// validAfter, validBefore, nonce) with a fresh random 32-byte nonce.
// validAfter is 0 so the authorization is usable immediately.
func (b *Builder) TransferWithAuthorization(ctx context.Context, req Request) (*Authorization, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var nonce common.Hash
	if _, err := io.ReadFull(b.rand, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	a := b.base(SchemeTransferWithAuthorization, req, b.signer.Account())
	a.AuthNonce = &nonce
	a.ValidAfter = new(big.Int)
	a.ValidBefore = big.NewInt(b.now().Add(req.Window).Unix())
	return b.sign(ctx, a)
}

func (b *Builder) base(scheme Scheme, req Request, owner common.Address) *Authorization {
	return &Authorization{
		ID:        uuid.NewString(),
		Scheme:    scheme,
		Token:     req.Token.Address,
		TokenName: req.Token.Name,
		Version:   req.Token.Version,
		ChainID:   new(big.Int).Set(req.Token.ChainID),
		Decimals:  req.Token.Decimals,
		Owner:     owner,
		Spender:   req.Counterparty,
		Value:     new(big.Int).Set(req.Amount),
	}
}

func (b *Builder) sign(ctx context.Context, a *Authorization) (*Authorization, error) {
	td, err := a.TypedData()
	if err != nil {
		return nil, err
	}
	digest, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, fmt.Errorf("hashing typed data: %w", err)
	}

	sig, err := b.signer.SignTypedData(ctx, td, a.Rows())
	if errors.Is(err, wallet.ErrUserRejected) {
		b.log.WithField("id", a.ID).Info("signature request rejected")
		return nil, ErrRejected
	}
	if err != nil {
		return nil, fmt.Errorf("signing %s: %w", td.PrimaryType, err)
	}

	v, r, s, err := splitSignature(sig)
	if err != nil {
		return nil, err
	}
	a.V, a.R, a.S = v, r, s
	a.Signature = sig
	a.Digest = common.BytesToHash(digest)
	a.CreatedAt = b.now().UTC()

	b.log.WithFields(logrus.Fields{"id": a.ID, "scheme": a.Scheme, "token": a.Token.Hex()}).Info("authorization signed")
	return a, nil
}

// splitSignature decomposes R || S || V. V is normalised to 27/28.
func splitSignature(sig []byte) (uint8, common.Hash, common.Hash, error) {
	if len(sig) != 65 {
		return 0, common.Hash{}, common.Hash{}, fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(sig))
	}
	v := sig[64]
	if v < 27 {
		v += 27
	}
	return v, common.BytesToHash(sig[:32]), common.BytesToHash(sig[32:64]), nil
}
