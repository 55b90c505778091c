package ui

import (
	"fmt"
	"io"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/txflow"
)

// FormReporter prints the transitions of a txflow.Form. While a transaction
// is pending it can show a spinner.
type FormReporter struct {
	out     io.Writer
	network *chain.Network
	animate bool
	spin    *Spinner
}

// NewFormReporter creates a reporter. network may be nil.
func NewFormReporter(out io.Writer, network *chain.Network, animate bool) *FormReporter {
	return &FormReporter{out: out, network: network, animate: animate}
}

// Observe implements txflow.Observer.
func (r *FormReporter) Observe(ev txflow.Event) {
	switch ev.State {
	case txflow.AwaitingApproval:
		fmt.Fprintln(r.out, Meta("Waiting for approval..."))
	case txflow.Submitted:
		fmt.Fprintln(r.out, Info("Submitted "+ev.Hash.Hex()))
		if r.network != nil {
			if link := r.network.TxURL(ev.Hash.Hex()); link != "" {
				fmt.Fprintln(r.out, Meta(link))
			}
		}
		if r.animate {
			r.spin = NewSpinner(r.out, "Waiting for confirmation...")
			r.spin.Start()
		}
	case txflow.Confirmed:
		r.stopSpinner()
		msg := "Confirmed"
		if ev.Receipt != nil && ev.Receipt.BlockNumber != nil {
			msg = fmt.Sprintf("Confirmed in block %s (gas used %d)", ev.Receipt.BlockNumber, ev.Receipt.GasUsed)
		}
		fmt.Fprintln(r.out, Success(msg))
	case txflow.Failed:
		r.stopSpinner()
		fmt.Fprintln(r.out, Err(fmt.Sprintf("Failed: %v", ev.Err)))
	case txflow.Idle:
		r.stopSpinner()
		fmt.Fprintln(r.out, Warn("Cancelled, nothing was sent"))
	}
}

// Close stops a running spinner, e.g. when the wait is interrupted.
func (r *FormReporter) Close() { r.stopSpinner() }

func (r *FormReporter) stopSpinner() {
	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
}
