package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// NearDecimals is the number of yoctoNEAR decimal places in one NEAR.
const NearDecimals = 24

// maxYocto is the largest amount a transaction can carry, 2^128-1 yoctoNEAR.
var maxYocto = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// MaxBalance is the largest representable amount.
func MaxBalance() Balance {
	return NewBalance(maxYocto)
}

// Balance is an amount of NEAR tokens held as yoctoNEAR. The zero value is 0 NEAR.
type Balance struct {
	yocto *big.Int
}

// NewBalance returns a Balance of yocto yoctoNEAR. The argument is copied.
func NewBalance(yocto *big.Int) Balance {
	if yocto == nil {
		return Balance{}
	}
	return Balance{yocto: new(big.Int).Set(yocto)}
}

// NearToYocto is a convenience for whole token amounts.
func NearToYocto(near int64) Balance {
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(NearDecimals), nil)
	return Balance{yocto: v.Mul(v, big.NewInt(near))}
}

// ParseYocto parses a decimal yoctoNEAR string as returned by the RPC.
func ParseYocto(s string) (Balance, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return Balance{}, fmt.Errorf("invalid yoctoNEAR amount %q", s)
	}
	if v.Cmp(maxYocto) > 0 {
		return Balance{}, fmt.Errorf("yoctoNEAR amount %q exceeds the maximum of %s", s, maxYocto)
	}
	return Balance{yocto: v}, nil
}

// ParseBalance parses operator input such as "10NEAR", "0.5 near" or "10000yoctonear".
func ParseBalance(s string) (Balance, error) {
	in := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch {
	case strings.HasSuffix(in, "yoctonear"):
		digits := strings.TrimSuffix(in, "yoctonear")
		v, ok := new(big.Int).SetString(digits, 10)
		if !ok || v.Sign() < 0 {
			return Balance{}, fmt.Errorf("invalid amount %q: expected an integer number of yoctoNEAR", s)
		}
		b, err := ParseYocto(digits)
		if err != nil {
			return Balance{}, fmt.Errorf("invalid amount %q: exceeds the maximum of %s", s, MaxBalance())
		}
		return b, nil
	case strings.HasSuffix(in, "near"):
		d, err := decimal.NewFromString(strings.TrimSuffix(in, "near"))
		if err != nil {
			return Balance{}, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		if d.Sign() < 0 {
			return Balance{}, fmt.Errorf("invalid amount %q: must not be negative", s)
		}
		y := d.Shift(NearDecimals)
		if !y.IsInteger() {
			return Balance{}, fmt.Errorf("invalid amount %q: at most %d decimal places are allowed", s, NearDecimals)
		}
		if y.BigInt().Cmp(maxYocto) > 0 {
			return Balance{}, fmt.Errorf("invalid amount %q: exceeds the maximum of %s", s, MaxBalance())
		}
		return Balance{yocto: y.BigInt()}, nil
	default:
		return Balance{}, fmt.Errorf("invalid amount %q: expected a NEAR or yoctoNEAR suffix (example: 10NEAR or 0.5near or 10000yoctonear)", s)
	}
}

// Yocto returns a copy of the amount in yoctoNEAR.
func (b Balance) Yocto() *big.Int {
	if b.yocto == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.yocto)
}

// Cmp compares b and o and returns -1, 0 or +1.
func (b Balance) Cmp(o Balance) int {
	return b.Yocto().Cmp(o.Yocto())
}

// IsZero reports whether b is 0 NEAR.
func (b Balance) IsZero() bool {
	return b.yocto == nil || b.yocto.Sign() == 0
}

// String formats b in NEAR, e.g. "10 NEAR" or "0.000000000000000000000001 NEAR".
func (b Balance) String() string {
	if b.IsZero() {
		return "0 NEAR"
	}
	return decimal.NewFromBigInt(b.Yocto(), -NearDecimals).String() + " NEAR"
}
