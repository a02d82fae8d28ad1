package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var _ Prompter = (*Terminal)(nil)

// Terminal prompts line by line on in and out.
type Terminal struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, reader: bufio.NewReader(in), out: out}
}

func (t *Terminal) Input(message, defaultVal string) (string, error) {
	if defaultVal != "" {
		fmt.Fprintf(t.out, "- %s (Default %s)\n>>> ", message, defaultVal)
	} else {
		fmt.Fprintf(t.out, "- %s\n>>> ", message)
	}
	text, err := t.readLine()
	if err != nil {
		return "", err
	}
	if text == "" {
		return defaultVal, nil
	}
	return text, nil
}

// Select accepts either the option's number or its text.
func (t *Terminal) Select(message string, options []string, defaultIdx int) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("%s: nothing to choose from", message)
	}
	for {
		fmt.Fprintf(t.out, "- %s\n", message)
		for i, o := range options {
			marker := " "
			if i == defaultIdx {
				marker = "*"
			}
			fmt.Fprintf(t.out, " %s %d) %s\n", marker, i+1, o)
		}
		fmt.Fprint(t.out, ">>> ")

		text, err := t.readLine()
		if err != nil {
			return 0, err
		}
		if text == "" && defaultIdx >= 0 && defaultIdx < len(options) {
			return defaultIdx, nil
		}
		if idx, ok := matchOption(text, options); ok {
			return idx, nil
		}
		fmt.Fprintf(t.out, "%q is not one of the choices\n", text)
	}
}

// Password reads without echo when in is a terminal.
func (t *Terminal) Password(message string) (string, error) {
	fmt.Fprintf(t.out, "- %s\n>>> ", message)
	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return t.readLine()
}

func (t *Terminal) readLine() (string, error) {
	text, err := t.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && text != "") {
		if err == io.EOF {
			return "", fmt.Errorf("input closed: %w", io.ErrUnexpectedEOF)
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func matchOption(text string, options []string) (int, bool) {
	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(options) {
		return n - 1, true
	}
	for i, o := range options {
		if strings.EqualFold(text, o) {
			return i, true
		}
	}
	return 0, false
}
