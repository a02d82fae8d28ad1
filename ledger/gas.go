package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Gas is an amount of prepaid gas attached to a function call.
type Gas uint64

const (
	TeraGas Gas = 1_000_000_000_000
	GigaGas Gas = 1_000_000_000

	// MaxGas is the most gas a single function call may attach.
	MaxGas = 300 * TeraGas
	// DefaultGas is offered when the operator does not specify an amount.
	DefaultGas = 100 * TeraGas
)

// ParseGas parses "100 TeraGas", "30Tgas", "5 Ggas" or a plain integer amount of gas.
func ParseGas(s string) (Gas, error) {
	in := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	unit := Gas(1)
	for _, suffix := range []struct {
		text string
		unit Gas
	}{
		{"teragas", TeraGas},
		{"tgas", TeraGas},
		{"gigagas", GigaGas},
		{"ggas", GigaGas},
		{"gas", 1},
	} {
		if strings.HasSuffix(in, suffix.text) {
			in = strings.TrimSuffix(in, suffix.text)
			unit = suffix.unit
			break
		}
	}
	n, err := strconv.ParseUint(in, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid gas %q (example: 100 TeraGas or 30Tgas)", s)
	}
	if unit > 1 && n > uint64(MaxGas/unit) {
		return 0, fmt.Errorf("gas %q exceeds %s", s, MaxGas)
	}
	return Gas(n) * unit, nil
}

func (g Gas) String() string {
	if g != 0 && g%TeraGas == 0 {
		return fmt.Sprintf("%d Tgas", uint64(g/TeraGas))
	}
	return fmt.Sprintf("%d gas", uint64(g))
}
