package common

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotConfirmed is returned when the operator declines a transaction or
// no terminal is available to ask
var ErrNotConfirmed = errors.New("not confirmed: rerun with --yes to skip the prompt")

// Prompter reads y/n answers. In and Out default to stdin and stdout.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// Interactive overrides terminal detection on In
	Interactive *bool
}

// DefaultPrompter talks to the process terminal
var DefaultPrompter = &Prompter{}

func (p *Prompter) in() io.Reader {
	if p.In != nil {
		return p.In
	}
	return os.Stdin
}

func (p *Prompter) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

func (p *Prompter) interactive() bool {
	if p.Interactive != nil {
		return *p.Interactive
	}
	f, ok := p.in().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Ask prints question and reads one line. ok is false when no terminal is
// attached.
func (p *Prompter) Ask(question string) (answer string, ok bool, err error) {
	if !p.interactive() {
		return "", false, nil
	}
	fmt.Fprint(p.out(), question)
	line, err := bufio.NewReader(p.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", true, fmt.Errorf("failed to read user input: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(line)), true, nil
}

// Confirm asks a [y/N] question. assumeYes short-circuits the prompt.
// Anything but y or yes, and any non-interactive session, is ErrNotConfirmed.
func (p *Prompter) Confirm(assumeYes bool, question string) error {
	if assumeYes {
		return nil
	}
	answer, ok, err := p.Ask(question + " [y/N]: ")
	if err != nil {
		return err
	}
	if !ok || (answer != "y" && answer != "yes") {
		return ErrNotConfirmed
	}
	return nil
}
