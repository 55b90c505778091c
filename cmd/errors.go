package cmd

import (
	"context"
	"errors"

	"github.com/Mohsinsiddi/swapctl/internal/authz"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/txflow"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/Mohsinsiddi/swapctl/internal/wallet"
)

// errReported marks a failure that was already shown to the user.
var errReported = errors.New("failed")

// Access errors raised before anything is sent.
var (
	errNotPermitted = errors.New("not permitted")
	errOwnerOnly    = errors.New("owner only")
)

// errorLine renders an error for the terminal with a short hint for the
// categories the user can act on.
func errorLine(err error) string {
	switch {
	case errors.Is(err, chain.ErrInvalidAmount), errors.Is(err, chain.ErrInvalidAddress):
		return ui.Err("Invalid input: " + err.Error())
	case errors.Is(err, contract.ErrUnavailable):
		return ui.Err("Not available for this contract: " + err.Error())
	case errors.Is(err, txflow.ErrInFlight):
		return ui.Warn(err.Error())
	case errors.Is(err, chain.ErrReverted):
		return ui.Err("Transaction reverted: " + err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return ui.Err("Timed out waiting for the node: " + err.Error())
	}
	return ui.Err(err.Error())
}

// declined reports whether err means the user said no to a prompt. Declining
// is not a failure.
func declined(err error) bool {
	return errors.Is(err, wallet.ErrUserRejected) || errors.Is(err, authz.ErrRejected)
}
