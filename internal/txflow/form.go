// Package txflow sequences a form's transaction submission: approval,
// broadcast, confirmation and the reads that depend on the result.
package txflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/Mohsinsiddi/swapctl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// ErrInFlight is returned when a form already has a submission awaiting
// approval or confirmation.
var ErrInFlight = errors.New("a submission is already in flight for this form")

// State is where a form is in its submission lifecycle.
type State int

const (
	Idle State = iota
	AwaitingApproval
	Submitted
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingApproval:
		return "awaiting approval"
	case Submitted:
		return "submitted"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Busy reports whether a new submission must be refused.
func (s State) Busy() bool { return s == AwaitingApproval || s == Submitted }

// Wallet is the connected account a form submits through.
// *wallet.Provider implements it.
type Wallet interface {
	SendCall(ctx context.Context, c contract.Call) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash, interval time.Duration) (*types.Receipt, error)
}

// Event is one state transition.
type Event struct {
	Form    string
	State   State
	Hash    common.Hash
	Receipt *types.Receipt
	Err     error
}

// Observer receives every transition of a form, in order.
type Observer func(Event)

type refresher struct {
	name string
	fn   func(ctx context.Context) error
}

// Form tracks one user-facing form. It is safe for concurrent use; at most
// one submission runs at a time.
type Form struct {
	name     string
	wallet   Wallet
	interval time.Duration
	log      logrus.FieldLogger

	mu         sync.Mutex
	state      State
	hash       common.Hash
	err        error
	observers  []Observer
	refreshers []refresher
}

// Option configures a Form.
type Option func(*Form)

// WithPollInterval sets how often the receipt is polled.
func WithPollInterval(d time.Duration) Option {
	return func(f *Form) { f.interval = d }
}

// WithLogger attaches a logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Form) { f.log = l }
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(f *Form) { f.observers = append(f.observers, o) }
}

// New creates an idle form.
func New(name string, w Wallet, opts ...Option) *Form {
	f := &Form{name: name, wallet: w, interval: chain.DefaultPollInterval}
	for _, opt := range opts {
		opt(f)
	}
	f.log = logging.OrDiscard(f.log).WithField("form", name)
	return f
}

// Name returns the form name.
func (f *Form) Name() string { return f.name }

// OnChange registers an observer.
func (f *Form) OnChange(o Observer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, o)
}

// Refresh registers a dependent read that runs after every confirmation.
func (f *Form) Refresh(name string, fn func(ctx context.Context) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshers = append(f.refreshers, refresher{name: name, fn: fn})
}

// State returns the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Hash returns the hash of the latest submission, if any.
func (f *Form) Hash() common.Hash {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hash
}

// Err returns the error that moved the form to Failed.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Reset returns a settled form to Idle. It is a no-op while busy.
func (f *Form) Reset() {
	f.mu.Lock()
	if f.state.Busy() || f.state == Idle {
		f.mu.Unlock()
		return
	}
	ev, obs := f.apply(Event{State: Idle})
	f.mu.Unlock()
	f.notify(ev, obs)
}

// SubmitAction validates and builds an action, then submits it. Input
// errors leave the form idle and never reach the wallet.
func (f *Form) SubmitAction(ctx context.Context, a contract.Action) (*types.Receipt, error) {
	c, err := a.Build()
	if err != nil {
		return nil, err
	}
	return f.Submit(ctx, c)
}

// Submit asks the wallet to approve and broadcast c, then waits for the
// receipt. A rejected prompt returns the form to Idle together with
// wallet.ErrUserRejected, and so does cancelling ctx before the wallet
// returns a hash. There is no timeout: if ctx ends first the form
// stays Submitted and Resume can pick the hash up again.
func (f *Form) Submit(ctx context.Context, c contract.Call) (*types.Receipt, error) {
	if err := f.begin(AwaitingApproval, common.Hash{}); err != nil {
		return nil, err
	}

	hash, err := f.wallet.SendCall(ctx, c)
	switch {
	case errors.Is(err, wallet.ErrUserRejected):
		f.log.Info("transaction rejected in wallet")
		f.transition(Event{State: Idle})
		return nil, err
	case err != nil && ctx.Err() != nil:
		f.log.WithError(err).Debug("submission cancelled before broadcast")
		f.transition(Event{State: Idle})
		return nil, err
	case err != nil:
		f.transition(Event{State: Failed, Err: err})
		return nil, err
	}

	f.log.WithFields(logrus.Fields{"tx": hash.Hex(), "call": c.Signature()}).Info("transaction submitted")
	f.transition(Event{State: Submitted, Hash: hash})
	return f.wait(ctx, hash)
}

// Resume waits on a hash submitted earlier, by this form or by a previous
// invocation.
func (f *Form) Resume(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	if f.state.Busy() && !(f.state == Submitted && f.hash == hash) {
		f.mu.Unlock()
		return nil, ErrInFlight
	}
	ev, obs := f.apply(Event{State: Submitted, Hash: hash})
	f.mu.Unlock()
	f.notify(ev, obs)
	return f.wait(ctx, hash)
}

func (f *Form) begin(s State, hash common.Hash) error {
	f.mu.Lock()
	if f.state.Busy() {
		f.mu.Unlock()
		return ErrInFlight
	}
	ev, obs := f.apply(Event{State: s, Hash: hash})
	f.mu.Unlock()
	f.notify(ev, obs)
	return nil
}

func (f *Form) wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := f.wallet.WaitMined(ctx, hash, f.interval)
	switch {
	case err != nil && ctx.Err() != nil:
		f.log.WithField("tx", hash.Hex()).Debug("stopped waiting, transaction still pending")
		return nil, err
	case err != nil:
		f.transition(Event{State: Failed, Hash: hash, Receipt: receipt, Err: err})
		return receipt, err
	}

	f.transition(Event{State: Confirmed, Hash: hash, Receipt: receipt})
	f.runRefreshers(ctx)
	return receipt, nil
}

func (f *Form) runRefreshers(ctx context.Context) {
	f.mu.Lock()
	rs := append([]refresher(nil), f.refreshers...)
	f.mu.Unlock()

	for _, r := range rs {
		if err := r.fn(ctx); err != nil {
			f.log.WithError(err).WithField("read", r.name).Warn("refresh after confirmation failed")
		}
	}
}

func (f *Form) transition(ev Event) {
	f.mu.Lock()
	ev, obs := f.apply(ev)
	f.mu.Unlock()
	f.notify(ev, obs)
}

// apply records ev and returns it with the form's name and hash filled in.
// Callers hold f.mu.
func (f *Form) apply(ev Event) (Event, []Observer) {
	ev.Form = f.name
	f.state = ev.State
	switch ev.State {
	case Idle, AwaitingApproval:
		f.hash, f.err = common.Hash{}, nil
		ev.Hash = common.Hash{}
	default:
		if ev.Hash != (common.Hash{}) {
			f.hash = ev.Hash
		}
		ev.Hash = f.hash
		f.err = ev.Err
	}
	return ev, append([]Observer(nil), f.observers...)
}

// notify runs outside the lock so observers may read the form.
func (f *Form) notify(ev Event, obs []Observer) {
	f.log.WithField("state", ev.State.String()).Debug("form state changed")
	for _, o := range obs {
		o(ev)
	}
}
