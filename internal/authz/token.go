package authz

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// How TokenInfo.Version was determined.
const (
	VersionFromContract  = "version()"
	VersionFromSeparator = "DOMAIN_SEPARATOR"
	VersionDefault       = "default"
)

// candidateVersions are tried against the on-chain DOMAIN_SEPARATOR when the
// token has no version() getter.
var candidateVersions = []string{"1", "2"}

// TokenInfo is the EIP-712 domain of a token plus display metadata.
type TokenInfo struct {
	Address  common.Address
	Name     string
	Symbol   string
	Decimals uint8
	Version  string
	ChainID  *big.Int

	VersionSource string
	// DomainSeparator is nil when the token does not expose one.
	DomainSeparator *common.Hash
	// DomainVerified is true when the computed domain matches DomainSeparator.
	DomainVerified bool
}

// ResolveToken reads the metadata needed to build typed data for a token.
// A token without name() is reported as contract.ErrUnavailable and must not
// be used to build a payload.
func ResolveToken(ctx context.Context, caller ethereum.ContractCaller, token common.Address, chainID *big.Int, log logrus.FieldLogger) (TokenInfo, error) {
	log = logging.OrDiscard(log).WithField("token", token.Hex())
	t := contract.NewToken(caller, token)
	info := TokenInfo{Address: token, ChainID: new(big.Int).Set(chainID)}

	name, err := t.Name(ctx)
	if err != nil {
		return TokenInfo{}, unavailable("name()", err)
	}
	info.Name = name

	dec, err := t.Decimals(ctx)
	switch {
	case err == nil:
		info.Decimals = dec
	default:
		p, ok := LookupPreset(token.Hex())
		if !ok {
			return TokenInfo{}, unavailable("decimals()", err)
		}
		info.Decimals = p.Decimals
	}

	if sym, err := t.Symbol(ctx); err == nil {
		info.Symbol = sym
	}

	if sep, err := t.DomainSeparator(ctx); err == nil {
		h := common.Hash(sep)
		info.DomainSeparator = &h
	} else {
		log.WithError(err).Debug("no DOMAIN_SEPARATOR")
	}

	if v, err := t.Version(ctx); err == nil && strings.TrimSpace(v) != "" {
		info.Version, info.VersionSource = v, VersionFromContract
	} else if v, ok := matchVersion(info); ok {
		info.Version, info.VersionSource = v, VersionFromSeparator
	} else {
		info.Version, info.VersionSource = candidateVersions[0], VersionDefault
	}

	if info.DomainSeparator != nil {
		computed, err := domainSeparator(info)
		info.DomainVerified = err == nil && computed == *info.DomainSeparator
		if !info.DomainVerified {
			log.WithField("version", info.Version).Warn("computed EIP-712 domain does not match DOMAIN_SEPARATOR; signatures may be rejected")
		}
	}
	return info, nil
}

func matchVersion(info TokenInfo) (string, bool) {
	if info.DomainSeparator == nil {
		return "", false
	}
	for _, v := range candidateVersions {
		probe := info
		probe.Version = v
		if h, err := domainSeparator(probe); err == nil && h == *info.DomainSeparator {
			return v, true
		}
	}
	return "", false
}

func unavailable(what string, err error) error {
	if errors.Is(err, contract.ErrUnavailable) {
		return fmt.Errorf("token %s: %w", what, err)
	}
	return fmt.Errorf("%w: token %s: %w", contract.ErrUnavailable, what, err)
}

// Preset is a well-known mainnet token.
type Preset struct {
	Symbol   string
	Name     string
	Address  common.Address
	Decimals uint8
	// Schemes lists the signed-authorization schemes the token supports.
	Schemes []Scheme
}

var presets = []Preset{
	{"stETH", "Liquid staked Ether 2.0", common.HexToAddress("0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84"), 18, []Scheme{SchemePermit}},
	{"USDC", "USD Coin", common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"), 6, []Scheme{SchemePermit, SchemeTransferWithAuthorization}},
	// DAI's permit predates EIP-2612 (holder, spender, nonce, expiry, allowed) and is not supported.
	{"DAI", "Dai Stablecoin", common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f"), 18, nil},
	{"USDS", "USDS Stablecoin", common.HexToAddress("0xdC035D45d973E3EC169d2276DDab16f1e407384F"), 18, []Scheme{SchemePermit}},
}

// Presets lists the well-known mainnet tokens.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// LookupPreset finds a preset by symbol (case-insensitive) or address.
func LookupPreset(symbolOrAddress string) (Preset, bool) {
	s := strings.TrimSpace(symbolOrAddress)
	for _, p := range presets {
		if strings.EqualFold(p.Symbol, s) || strings.EqualFold(p.Address.Hex(), s) {
			return p, true
		}
	}
	return Preset{}, false
}
