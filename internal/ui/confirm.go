package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Mohsinsiddi/swapctl/internal/wallet"
)

// Prompter asks y/N questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm prompts with a yes/no question. Anything but y/yes is a no,
// including end of input.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleWarning.Render(prompt))
	return p.yes()
}

// ConfirmDanger is Confirm styled for owner-only or irreversible actions.
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return p.yes()
}

func (p *Prompter) yes() bool {
	line, _ := p.in.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// Approver shows each wallet request as a key/value block and asks for
// confirmation. It stands in for the browser wallet's approval popup.
type Approver struct {
	p *Prompter
}

// NewApprover creates a terminal approver.
func NewApprover(p *Prompter) *Approver { return &Approver{p: p} }

// Approve implements wallet.Approver. A cancelled ctx is reported without
// prompting. Once the prompt is shown ctx is ignored and Approve blocks until
// the user answers or input ends.
func (a *Approver) Approve(ctx context.Context, req wallet.Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	title := req.Title
	question := "Sign this message?"
	if req.Kind == wallet.RequestTransaction {
		question = "Broadcast this transaction?"
	}
	fmt.Fprintln(a.p.out, KeyValueBlock(title, req.Rows))
	return a.p.Confirm(question), nil
}
