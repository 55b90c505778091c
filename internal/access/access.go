// Package access decides which configured swapper contract an account may
// operate on.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ErrNoCandidates is returned when the probe has nothing to check.
var ErrNoCandidates = errors.New("no swapper contracts configured")

// Role is the relationship of an account to one contract.
type Role string

const (
	RoleNone    Role = "none"
	RoleOwner   Role = "owner"
	RoleAllowed Role = "allowed"
	RoleUnknown Role = "unknown" // the read failed
)

// Check is the outcome of checking one candidate.
type Check struct {
	Contract common.Address
	Owner    common.Address // zero when the owner read failed
	Role     Role
	Err      error
}

// Result is the outcome of a probe.
type Result struct {
	// Contract is the selected swapper. Without a match it is candidate #0,
	// kept as an inert default for display.
	Contract  common.Address
	Permitted bool
	IsOwner   bool
	// Checks lists the candidates actually checked, in order.
	Checks []Check
}

// Option configures Probe.
type Option func(*options)

type options struct {
	readTimeout time.Duration
}

// WithReadTimeout bounds the reads of each candidate separately. A candidate
// that runs out of time counts as a failed read and the scan moves on.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) { o.readTimeout = d }
}

// Probe checks candidates in order and selects the first one the account
// owns or is allow-listed on. A candidate whose reads fail counts as a
// non-match and the scan continues. Reads are never retried. Only
// cancellation of ctx itself stops the scan early.
func Probe(ctx context.Context, caller ethereum.ContractCaller, account common.Address, candidates []common.Address, log logrus.FieldLogger, opts ...Option) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}
	log = logging.OrDiscard(log)
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res := Result{Contract: candidates[0]}
	for _, addr := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		c := o.check(ctx, contract.NewSwapper(caller, addr), account)
		res.Checks = append(res.Checks, c)

		entry := log.WithFields(logrus.Fields{"contract": addr.Hex(), "role": c.Role})
		if c.Err != nil {
			entry.WithError(c.Err).Debug("candidate check failed, skipping")
			continue
		}
		entry.Debug("candidate checked")

		if c.Role == RoleOwner || c.Role == RoleAllowed {
			res.Contract = addr
			res.Permitted = true
			res.IsOwner = c.Role == RoleOwner
			return res, nil
		}
	}
	return res, nil
}

func (o options) check(ctx context.Context, s *contract.Swapper, account common.Address) Check {
	if o.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.readTimeout)
		defer cancel()
	}
	c := Check{Contract: s.Address(), Role: RoleUnknown}

	owner, err := s.Owner(ctx)
	if err != nil {
		c.Err = fmt.Errorf("reading owner: %w", err)
		return c
	}
	c.Owner = owner
	if owner == account {
		c.Role = RoleOwner
		return c
	}

	allowed, err := s.Allowed(ctx, account)
	if err != nil {
		c.Err = fmt.Errorf("reading allow-list: %w", err)
		return c
	}
	if allowed {
		c.Role = RoleAllowed
	} else {
		c.Role = RoleNone
	}
	return c
}

// Status is the allow-list state of an account on a single contract.
type Status struct {
	Contract  common.Address
	IsAllowed bool // owner or allow-listed
	IsOwner   bool
}

// CheckOne reads owner() and allowed(account) on one contract. Unlike Probe,
// read failures are returned to the caller.
func CheckOne(ctx context.Context, caller ethereum.ContractCaller, account, addr common.Address) (Status, error) {
	s := contract.NewSwapper(caller, addr)
	st := Status{Contract: addr}

	owner, err := s.Owner(ctx)
	if err != nil {
		return st, fmt.Errorf("reading owner: %w", err)
	}
	allowed, err := s.Allowed(ctx, account)
	if err != nil {
		return st, fmt.Errorf("reading allow-list: %w", err)
	}
	st.IsOwner = owner == account
	st.IsAllowed = allowed || st.IsOwner
	return st, nil
}
