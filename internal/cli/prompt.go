package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompter asks for credentials on the controlling terminal. The
// password is read with echo disabled when stdin is a terminal. An EOF or an
// empty line is reported as empty input, which the manager treats as the
// user abandoning the prompt.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stderr,
	}
}

func (p *TerminalPrompter) Username(_ context.Context) (string, error) {
	fmt.Fprint(p.out, "Username: ")

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *TerminalPrompter) Password(_ context.Context) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprint(p.out, "Password: ")
		line, err := p.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(p.out, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func (p *TerminalPrompter) Warn(message string) {
	fmt.Fprintf(p.out, "! %s\n", message)
}
