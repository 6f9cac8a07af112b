package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when a confirmation is needed but input is
// not a terminal.
var ErrNotInteractive = errors.New("cannot prompt for confirmation (not a terminal); use --yes")

// Prompter reads answers from the user. Labels are only printed when input
// is a terminal; secrets are read without echo there.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
	tty    bool
}

// NewPrompter reads from in and prints labels to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{reader: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd, p.tty = int(f.Fd()), true
	}
	return p
}

// Interactive reports whether input is a terminal.
func (p *Prompter) Interactive() bool {
	return p.tty
}

// ReadLine returns the next input line without its line ending. A final
// line without a newline is returned with a nil error; io.EOF follows.
func (p *Prompter) ReadLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Line asks for a value.
func (p *Prompter) Line(label string) (string, error) {
	if p.tty {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	s, err := p.ReadLine()
	return strings.TrimSpace(s), err
}

// Secret asks for a value without echoing it.
func (p *Prompter) Secret(label string) (string, error) {
	if !p.tty {
		return p.ReadLine()
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Confirm asks a yes/no question. The default is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	if !p.tty {
		return false, ErrNotInteractive
	}
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	answer, err := p.ReadLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
