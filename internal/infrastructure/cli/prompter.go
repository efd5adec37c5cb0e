package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/doeshing/codecraft/internal/ports"
)

// ErrNonInteractive is returned when a question needs a terminal and stdin is not one.
var ErrNonInteractive = errors.New("stdin is not a terminal; cannot ask for confirmation")

type lineResult struct {
	line string
	err  error
}

// Prompter implements ports.Prompter using stdin/stdout. Reads run on a
// goroutine so a cancelled context interrupts the wait.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	mu      sync.Mutex
	pending chan lineResult
}

// NewPrompter constructs a prompter referencing stdio. It only asks
// questions when in is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isTerminal(in),
	}
}

// NewForcedPrompter asks questions even when in is not a terminal.
func NewForcedPrompter(in io.Reader, out io.Writer) *Prompter {
	p := NewPrompter(in, out)
	p.interactive = true
	return p
}

// Interactive reports whether the prompter will ask questions.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// AskYesNo asks once. An empty answer takes def; anything other than y or
// yes declines.
func (p *Prompter) AskYesNo(ctx context.Context, question string, def bool) (bool, error) {
	if !p.interactive {
		return false, ErrNonInteractive
	}
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s ", question, hint)
	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// AskLine returns the answer verbatim apart from its line terminator.
func (p *Prompter) AskLine(ctx context.Context, question string) (string, error) {
	if !p.interactive {
		return "", ErrNonInteractive
	}
	fmt.Fprintf(p.out, "%s ", question)
	return p.readLine(ctx)
}

// readLine waits for the next line or ctx. A read abandoned on
// cancellation is picked up by the next call instead of racing a new one.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}
	ch := p.pending
	p.mu.Unlock()

	select {
	case res := <-ch:
		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var _ ports.Prompter = (*Prompter)(nil)
