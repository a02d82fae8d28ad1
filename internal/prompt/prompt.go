// Package prompt asks the operator for values on a terminal.
package prompt

import (
	"errors"
)

var (
	// ErrNonInteractive is returned by every prompt when the operator asked for unattended operation.
	ErrNonInteractive = errors.New("input required but running non-interactively")
	// ErrScriptExhausted is returned by Script once its answers run out.
	ErrScriptExhausted = errors.New("no scripted answer left")
)

// Prompter is the operator's side of an interactive session.
type Prompter interface {
	// Input asks for free text. An empty answer selects defaultVal.
	Input(message, defaultVal string) (string, error)
	// Select asks for one of options and returns its index.
	Select(message string, options []string, defaultIdx int) (int, error)
	// Password asks for a secret without echoing it.
	Password(message string) (string, error)
}

// NonInteractive fails every prompt with ErrNonInteractive.
type NonInteractive struct{}

var _ Prompter = NonInteractive{}

func (NonInteractive) Input(string, string) (string, error) {
	return "", ErrNonInteractive
}

func (NonInteractive) Select(string, []string, int) (int, error) {
	return 0, ErrNonInteractive
}

func (NonInteractive) Password(string) (string, error) {
	return "", ErrNonInteractive
}
