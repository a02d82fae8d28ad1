package ledger

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minAccountIDLen = 2
	maxAccountIDLen = 64
)

var (
	accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)
	implicitPattern  = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// AccountID names an account on the ledger.
//
// Parsing is lenient on purpose: offline construction accepts any non-empty identifier as-is.
// Use Validate for the ledger's syntactic rules.
type AccountID string

// ParseAccountID trims s and rejects only empty input.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("account id must not be empty")
	}
	return AccountID(s), nil
}

func (id AccountID) String() string {
	return string(id)
}

// Validate checks id against the ledger's account naming rules.
func (id AccountID) Validate() error {
	n := len(id)
	if n < minAccountIDLen || n > maxAccountIDLen {
		return fmt.Errorf("account id %q must be between %d and %d characters", string(id), minAccountIDLen, maxAccountIDLen)
	}
	if !accountIDPattern.MatchString(string(id)) {
		return fmt.Errorf("account id %q may only contain lowercase alphanumerics separated by '.', '-' or '_'", string(id))
	}
	return nil
}

// IsImplicit reports whether id is a 64 character hex implicit account,
// which may receive funds before it exists on chain.
func (id AccountID) IsImplicit() bool {
	return implicitPattern.MatchString(string(id))
}
