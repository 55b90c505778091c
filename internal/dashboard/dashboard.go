// Package dashboard loads the swapper's admin overview: balances, the
// withdrawal queue and the derived totals.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// DefaultWorkers bounds the number of concurrent reads.
const DefaultWorkers = 4

// ErrNotDeployed marks a field whose contract has no address on the network.
var ErrNotDeployed = errors.New("not deployed on this network")

// Field is one independently loaded value.
type Field[T any] struct {
	Value T
	Err   error
}

// OK reports whether the value loaded.
func (f Field[T]) OK() bool { return f.Err == nil }

// Overview is everything the admin view shows. Each field carries its own
// error so one failing read never hides the others.
type Overview struct {
	Swapper common.Address

	Owner       Field[common.Address]
	TotalEth    Field[*big.Int]
	EthBalance  Field[*big.Int] // balances(swapper)
	Steth       Field[*big.Int] // stETH.balanceOf(swapper)
	Weth        Field[*big.Int] // WETH.balanceOf(swapper)
	Withdrawals Field[[]Withdrawal]
}

// Withdrawal is one queue request with its status.
type Withdrawal struct {
	ID *big.Int
	contract.WithdrawalStatus
}

// Contracts are the addresses the overview reads. Zero addresses are
// reported as ErrNotDeployed.
type Contracts struct {
	Swapper         common.Address
	StETH           common.Address
	WETH            common.Address
	WithdrawalQueue common.Address
}

// ContractsFor fills the token and queue addresses from the network.
func ContractsFor(n *chain.Network, swapper common.Address) Contracts {
	return Contracts{Swapper: swapper, StETH: n.StETH, WETH: n.WETH, WithdrawalQueue: n.WithdrawalQueue}
}

// Loader reads overviews through a bounded worker pool.
type Loader struct {
	caller ethereum.ContractCaller
	pool   *ants.Pool
	log    logrus.FieldLogger
}

// NewLoader creates a Loader with the given pool size. Release must be
// called when done.
func NewLoader(caller ethereum.ContractCaller, workers int, log logrus.FieldLogger) (*Loader, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return &Loader{caller: caller, pool: pool, log: logging.OrDiscard(log)}, nil
}

// Release stops the worker pool.
func (l *Loader) Release() { l.pool.Release() }

// Load reads every field concurrently and waits for all of them.
func (l *Loader) Load(ctx context.Context, c Contracts) (*Overview, error) {
	if c.Swapper == (common.Address{}) {
		return nil, fmt.Errorf("%w: no swapper contract selected", chain.ErrInvalidAddress)
	}
	sw := contract.NewSwapper(l.caller, c.Swapper)
	ov := &Overview{Swapper: c.Swapper}

	jobs := []func(){
		func() { ov.Owner.Value, ov.Owner.Err = sw.Owner(ctx) },
		func() { ov.TotalEth.Value, ov.TotalEth.Err = sw.TotalEth(ctx) },
		func() { ov.EthBalance.Value, ov.EthBalance.Err = sw.Balances(ctx, c.Swapper) },
		func() { ov.Steth = l.balanceOf(ctx, c.StETH, c.Swapper) },
		func() { ov.Weth = l.balanceOf(ctx, c.WETH, c.Swapper) },
		func() { ov.Withdrawals = l.withdrawals(ctx, c.WithdrawalQueue, c.Swapper) },
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		if err := l.pool.Submit(func() {
			defer wg.Done()
			job()
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("scheduling read: %w", err)
		}
	}
	wg.Wait()

	l.logFailures(ov)
	return ov, nil
}

func (l *Loader) balanceOf(ctx context.Context, token, account common.Address) Field[*big.Int] {
	if token == (common.Address{}) {
		return Field[*big.Int]{Err: ErrNotDeployed}
	}
	v, err := contract.NewToken(l.caller, token).BalanceOf(ctx, account)
	return Field[*big.Int]{Value: v, Err: err}
}

// withdrawals reads the request IDs, then their statuses.
func (l *Loader) withdrawals(ctx context.Context, queue, owner common.Address) Field[[]Withdrawal] {
	if queue == (common.Address{}) {
		return Field[[]Withdrawal]{Err: ErrNotDeployed}
	}
	q := contract.NewWithdrawalQueue(l.caller, queue)
	ids, err := q.Requests(ctx, owner)
	if err != nil {
		return Field[[]Withdrawal]{Err: fmt.Errorf("request ids: %w", err)}
	}
	statuses, err := q.Statuses(ctx, ids)
	if err != nil {
		return Field[[]Withdrawal]{Err: fmt.Errorf("request statuses: %w", err)}
	}
	if len(statuses) != len(ids) {
		return Field[[]Withdrawal]{Err: fmt.Errorf("%w: %d statuses for %d requests", contract.ErrUnavailable, len(statuses), len(ids))}
	}
	out := make([]Withdrawal, len(ids))
	for i := range ids {
		out[i] = Withdrawal{ID: ids[i], WithdrawalStatus: statuses[i]}
	}
	return Field[[]Withdrawal]{Value: out}
}

func (l *Loader) logFailures(ov *Overview) {
	for name, err := range map[string]error{
		"owner":       ov.Owner.Err,
		"totalEth":    ov.TotalEth.Err,
		"balances":    ov.EthBalance.Err,
		"steth":       ov.Steth.Err,
		"weth":        ov.Weth.Err,
		"withdrawals": ov.Withdrawals.Err,
	} {
		if err != nil && !errors.Is(err, ErrNotDeployed) {
			l.log.WithError(err).WithField("field", name).Warn("dashboard read failed")
		}
	}
}

// QueuedSteth is the stETH amount across all withdrawal requests.
func (o *Overview) QueuedSteth() (*big.Int, bool) {
	if !o.Withdrawals.OK() {
		return nil, false
	}
	sum := new(big.Int)
	for _, w := range o.Withdrawals.Value {
		if w.AmountOfStETH != nil {
			sum.Add(sum, w.AmountOfStETH)
		}
	}
	return sum, true
}

// TotalAssets is WETH plus the stETH queued for withdrawal. It is only
// available when both inputs loaded.
func (o *Overview) TotalAssets() (*big.Int, bool) {
	queued, ok := o.QueuedSteth()
	if !ok || !o.Weth.OK() || o.Weth.Value == nil {
		return nil, false
	}
	return queued.Add(queued, o.Weth.Value), true
}

// Gains is TotalAssets minus totalEth; it may be negative.
func (o *Overview) Gains() (*big.Int, bool) {
	assets, ok := o.TotalAssets()
	if !ok || !o.TotalEth.OK() || o.TotalEth.Value == nil {
		return nil, false
	}
	return assets.Sub(assets, o.TotalEth.Value), true
}
