package prompt_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/strangelove-ventures/nearcli/internal/prompt"
	"github.com/stretchr/testify/require"
)

func TestTerminalInput(t *testing.T) {
	out := new(bytes.Buffer)
	p := prompt.NewTerminal(strings.NewReader("bob.near\n\n"), out)

	v, err := p.Input("What is the receiver?", "")
	require.NoError(t, err)
	require.Equal(t, "bob.near", v)

	v, err = p.Input("How much?", "10 NEAR")
	require.NoError(t, err)
	require.Equal(t, "10 NEAR", v, "an empty line selects the default")
	require.Contains(t, out.String(), "(Default 10 NEAR)")

	_, err = p.Input("Anything else?", "")
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestTerminalInputWithoutTrailingNewline(t *testing.T) {
	p := prompt.NewTerminal(strings.NewReader("last"), io.Discard)
	v, err := p.Input("Value", "")
	require.NoError(t, err)
	require.Equal(t, "last", v)
}

func TestTerminalSelect(t *testing.T) {
	out := new(bytes.Buffer)
	p := prompt.NewTerminal(strings.NewReader("9\nmanual\n2\n\n"), out)
	options := []string{"private-key", "manual"}

	idx, err := p.Select("How to sign?", options, 0)
	require.NoError(t, err)
	require.Equal(t, 1, idx, "out of range answers are asked again")
	require.Contains(t, out.String(), `"9" is not one of the choices`)

	idx, err = p.Select("How to sign?", options, 0)
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	idx, err = p.Select("How to sign?", options, 1)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
}

func TestTerminalPasswordFromPipe(t *testing.T) {
	p := prompt.NewTerminal(strings.NewReader("ed25519:secret\n"), io.Discard)
	v, err := p.Password("Secret key")
	require.NoError(t, err)
	require.Equal(t, "ed25519:secret", v)
}

func TestScript(t *testing.T) {
	s := prompt.NewScript("", "2", "send", "x")

	v, err := s.Input("amount", "5 NEAR")
	require.NoError(t, err)
	require.Equal(t, "5 NEAR", v)

	idx, err := s.Select("mode", []string{"a", "b"}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	idx, err = s.Select("submit", []string{"send", "display"}, 1)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	_, err = s.Select("submit", []string{"send", "display"}, 1)
	require.Error(t, err)

	_, err = s.Password("secret")
	require.ErrorIs(t, err, prompt.ErrScriptExhausted)
	require.Equal(t, []string{"amount", "mode", "submit", "submit", "secret"}, s.Asked)
}

func TestNonInteractive(t *testing.T) {
	var p prompt.Prompter = prompt.NonInteractive{}
	_, err := p.Input("x", "y")
	require.ErrorIs(t, err, prompt.ErrNonInteractive)
	_, err = p.Select("x", []string{"y"}, 0)
	require.ErrorIs(t, err, prompt.ErrNonInteractive)
	_, err = p.Password("x")
	require.ErrorIs(t, err, prompt.ErrNonInteractive)
}
