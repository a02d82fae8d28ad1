package prompt

import (
	"fmt"
)

var _ Prompter = (*Script)(nil)

// Script answers prompts from a fixed list, in order. It records every message it was asked.
// An empty answer selects the default; Select answers may be an option's text or its 1-based number.
type Script struct {
	answers []string
	Asked   []string
}

func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

// Remaining is the number of unused answers.
func (s *Script) Remaining() int {
	return len(s.answers)
}

func (s *Script) next(message string) (string, error) {
	s.Asked = append(s.Asked, message)
	if len(s.answers) == 0 {
		return "", fmt.Errorf("%s: %w", message, ErrScriptExhausted)
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *Script) Input(message, defaultVal string) (string, error) {
	a, err := s.next(message)
	if err != nil {
		return "", err
	}
	if a == "" {
		return defaultVal, nil
	}
	return a, nil
}

func (s *Script) Select(message string, options []string, defaultIdx int) (int, error) {
	a, err := s.next(message)
	if err != nil {
		return 0, err
	}
	if a == "" {
		return defaultIdx, nil
	}
	idx, ok := matchOption(a, options)
	if !ok {
		return 0, fmt.Errorf("%s: scripted answer %q is not one of %v", message, a, options)
	}
	return idx, nil
}

func (s *Script) Password(message string) (string, error) {
	return s.next(message)
}
