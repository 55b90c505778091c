package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Authorization is a signed permit or transfer authorization together with
// every value bound into the signature, so a later step can submit the
// matching on-chain call without re-deriving anything.
type Authorization struct {
	ID        string         `json:"id"`
	Scheme    Scheme         `json:"scheme"`
	Token     common.Address `json:"token"`
	TokenName string         `json:"tokenName"`
	Version   string         `json:"version"`
	ChainID   *big.Int       `json:"chainId"`
	Decimals  uint8          `json:"decimals"`

	// Owner is the permit owner or the EIP-3009 "from".
	Owner common.Address `json:"owner"`
	// Spender is the permit spender or the EIP-3009 "to".
	Spender common.Address `json:"spender"`
	Value   *big.Int       `json:"value"`

	// permit
	Nonce    *big.Int `json:"nonce,omitempty"`
	Deadline *big.Int `json:"deadline,omitempty"`

	// transfer-with-authorization
	AuthNonce   *common.Hash `json:"authNonce,omitempty"`
	ValidAfter  *big.Int     `json:"validAfter,omitempty"`
	ValidBefore *big.Int     `json:"validBefore,omitempty"`

	V         uint8         `json:"v"`
	R         common.Hash   `json:"r"`
	S         common.Hash   `json:"s"`
	Signature hexutil.Bytes `json:"signature"`
	Digest    common.Hash   `json:"digest"`
	CreatedAt time.Time     `json:"createdAt"`
}

// TypedData rebuilds the EIP-712 payload that was signed.
func (a *Authorization) TypedData() (apitypes.TypedData, error) {
	if a.ChainID == nil || a.Value == nil {
		return apitypes.TypedData{}, fmt.Errorf("authorization %s is incomplete", a.ID)
	}
	d := domain(a.TokenName, a.Version, a.ChainID, a.Token)
	switch a.Scheme {
	case SchemePermit:
		if a.Nonce == nil || a.Deadline == nil {
			return apitypes.TypedData{}, fmt.Errorf("permit %s is missing nonce or deadline", a.ID)
		}
		return permitTypedData(d, a.Owner, a.Spender, a.Value, a.Nonce, a.Deadline), nil
	case SchemeTransferWithAuthorization:
		if a.AuthNonce == nil || a.ValidAfter == nil || a.ValidBefore == nil {
			return apitypes.TypedData{}, fmt.Errorf("authorization %s is missing nonce or validity window", a.ID)
		}
		return transferWithAuthorizationTypedData(d, a.Owner, a.Spender, a.Value, a.ValidAfter, a.ValidBefore, *a.AuthNonce), nil
	default:
		return apitypes.TypedData{}, fmt.Errorf("unknown scheme %q", a.Scheme)
	}
}

// Signer recovers the address that produced the signature over the rebuilt
// payload.
func (a *Authorization) Signer() (common.Address, error) {
	td, err := a.TypedData()
	if err != nil {
		return common.Address{}, err
	}
	digest, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return common.Address{}, fmt.Errorf("hashing typed data: %w", err)
	}
	if len(a.Signature) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(a.Signature))
	}
	sig := append([]byte(nil), a.Signature...)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that the signature was made by Owner.
func (a *Authorization) Verify() error {
	signer, err := a.Signer()
	if err != nil {
		return err
	}
	if signer != a.Owner {
		return fmt.Errorf("signature was made by %s, not owner %s", signer.Hex(), a.Owner.Hex())
	}
	return nil
}

// Expired reports whether the deadline (or validBefore) has passed.
func (a *Authorization) Expired(now time.Time) bool {
	end := a.Deadline
	if a.Scheme == SchemeTransferWithAuthorization {
		end = a.ValidBefore
	}
	return end != nil && end.Cmp(big.NewInt(now.Unix())) <= 0
}

// Call builds the on-chain call that consumes the signature:
// permit(owner, spender, value, deadline, v, r, s) or
// transferWithAuthorization(from, to, value, validAfter, validBefore, nonce, v, r, s).
func (a *Authorization) Call() (contract.Call, error) {
	tokenABI := contract.MustABI(contract.IDToken)
	switch a.Scheme {
	case SchemePermit:
		return contract.NewCall(tokenABI, a.Token, nil, "permit",
			a.Owner, a.Spender, a.Value, a.Deadline, a.V, [32]byte(a.R), [32]byte(a.S))
	case SchemeTransferWithAuthorization:
		if a.AuthNonce == nil {
			return contract.Call{}, fmt.Errorf("authorization %s has no nonce", a.ID)
		}
		return contract.NewCall(tokenABI, a.Token, nil, "transferWithAuthorization",
			a.Owner, a.Spender, a.Value, a.ValidAfter, a.ValidBefore, [32]byte(*a.AuthNonce), a.V, [32]byte(a.R), [32]byte(a.S))
	default:
		return contract.Call{}, fmt.Errorf("unknown scheme %q", a.Scheme)
	}
}

// TransferCall is the follow-up to a permit: transferFrom(owner, recipient, value),
// sent by the spender.
func (a *Authorization) TransferCall(recipient common.Address) (contract.Call, error) {
	if a.Scheme != SchemePermit {
		return contract.Call{}, fmt.Errorf("transfer step only applies to permits, not %s", a.Scheme)
	}
	return contract.NewCall(contract.MustABI(contract.IDToken), a.Token, nil, "transferFrom", a.Owner, recipient, a.Value)
}

// Rows is the key/value view shown for approval and after signing.
func (a *Authorization) Rows() [][2]string {
	ownerLabel, spenderLabel := "Owner", "Spender"
	if a.Scheme == SchemeTransferWithAuthorization {
		ownerLabel, spenderLabel = "From", "To"
	}
	rows := [][2]string{
		{"Scheme", string(a.Scheme)},
		{"Token", fmt.Sprintf("%s (%s)", a.TokenName, a.Token.Hex())},
		{"Domain", fmt.Sprintf("version %s, chain %s", a.Version, a.ChainID)},
		{ownerLabel, a.Owner.Hex()},
		{spenderLabel, a.Spender.Hex()},
		{"Value", chain.FormatUnits(a.Value, int(a.Decimals))},
	}
	switch a.Scheme {
	case SchemePermit:
		rows = append(rows,
			[2]string{"Nonce", a.Nonce.String()},
			[2]string{"Deadline", unixString(a.Deadline)})
	case SchemeTransferWithAuthorization:
		rows = append(rows,
			[2]string{"Nonce", a.AuthNonce.Hex()},
			[2]string{"Valid after", unixString(a.ValidAfter)},
			[2]string{"Valid before", unixString(a.ValidBefore)})
	}
	return rows
}

func unixString(v *big.Int) string {
	if v == nil {
		return "-"
	}
	if !v.IsInt64() || v.Sign() == 0 {
		return v.String()
	}
	return fmt.Sprintf("%s (%s)", v, time.Unix(v.Int64(), 0).UTC().Format(time.RFC3339))
}

// Save writes the authorization as JSON with 0600 permissions.
func (a *Authorization) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadAuthorization reads an authorization written by Save and checks that
// its signature matches its owner.
func LoadAuthorization(path string) (*Authorization, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Authorization
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := a.Verify(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &a, nil
}

// NonceUsed reports whether an EIP-3009 nonce has been used or cancelled.
func NonceUsed(ctx context.Context, caller ethereum.ContractCaller, token, authorizer common.Address, nonce common.Hash) (bool, error) {
	return contract.NewToken(caller, token).AuthorizationState(ctx, authorizer, nonce)
}
