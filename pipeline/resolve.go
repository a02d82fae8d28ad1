package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/strangelove-ventures/nearcli/internal/prompt"
	"go.uber.org/zap"
)

// Field describes one value the pipeline needs from the operator.
type Field[T any] struct {
	// Name identifies the field in diagnostics and errors.
	Name string
	// Prompt is shown when the operator has to be asked.
	Prompt string
	// Preset is the value supplied on the command line, if any.
	Preset *string
	// Default is offered at the prompt. Empty means none.
	Default string
	// Choices turns the prompt into a menu; Parse receives the chosen entry.
	Choices []string
	// Secret hides the operator's input.
	Secret bool
	// Parse converts text into a value. It must not touch the network.
	Parse func(string) (T, error)
	// Validate checks a parsed value against the network. It is skipped offline.
	Validate func(context.Context, T) error
}

// Resolver obtains field values from presets or the operator.
type Resolver struct {
	prompter prompt.Prompter
	out      io.Writer
	log      *zap.Logger
}

func NewResolver(log *zap.Logger, prompter prompt.Prompter, out io.Writer) *Resolver {
	return &Resolver{prompter: prompter, out: out, log: log}
}

// Out is where operator-facing diagnostics go.
func (r *Resolver) Out() io.Writer {
	return r.out
}

// Resolve returns f's preset if it parses and validates. Otherwise it asks the
// operator until an acceptable value is entered. When the operator cannot be
// asked it fails with a *ValidationError instead of blocking.
func Resolve[T any](ctx context.Context, r *Resolver, scope NetworkContext, f Field[T]) (T, error) {
	var zero T
	check := func(raw string) (T, error) {
		v, err := f.Parse(raw)
		if err != nil {
			return zero, err
		}
		if f.Validate != nil && scope.Online() {
			if err := f.Validate(ctx, v); err != nil {
				return zero, err
			}
		}
		return v, nil
	}

	var lastErr error
	if f.Preset != nil {
		v, err := check(*f.Preset)
		if err == nil {
			return v, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		r.diagnose(f.Name, err)
		lastErr = err
	}

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		raw, err := r.ask(f.Prompt, f.Default, f.Choices, f.Secret)
		if errors.Is(err, prompt.ErrNonInteractive) {
			return zero, &ValidationError{Field: f.Name, Err: lastErr}
		}
		if err != nil {
			return zero, fmt.Errorf("%s: %w", f.Name, err)
		}

		v, err := check(raw)
		if err == nil {
			return v, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		r.diagnose(f.Name, err)
		lastErr = err
	}
}

func (r *Resolver) ask(message, defaultVal string, choices []string, secret bool) (string, error) {
	switch {
	case len(choices) > 0:
		def := 0
		for i, c := range choices {
			if c == defaultVal {
				def = i
			}
		}
		idx, err := r.prompter.Select(message, choices, def)
		if err != nil {
			return "", err
		}
		return choices[idx], nil
	case secret:
		return r.prompter.Password(message)
	default:
		return r.prompter.Input(message, defaultVal)
	}
}

func (r *Resolver) diagnose(field string, err error) {
	r.log.Debug("Rejected value", zap.String("field", field), zap.Error(err))
	fmt.Fprintf(r.out, "Invalid %s: %v\n", field, err)
}
