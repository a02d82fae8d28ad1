package signer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/strangelove-ventures/nearcli/ledger"
)

// DefaultHDPath is the derivation path hardware wallets use for the first NEAR key.
const DefaultHDPath = "44'/397'/0'/0'/1'"

// DeviceDriver talks to a hardware signing device.
type DeviceDriver interface {
	// PublicKey returns the key the device holds at path.
	PublicKey(ctx context.Context, path HDPath) (ledger.PublicKey, error)
	// Sign asks the device to sign the canonical transaction bytes. The operator
	// confirms on the device, so this may block for a long time.
	Sign(ctx context.Context, path HDPath, unsignedTx []byte) (ledger.Signature, error)
}

// HDPath is a BIP-32 style derivation path. All components are hardened.
type HDPath []uint32

const hardened = uint32(0x80000000)

// ParseHDPath parses "44'/397'/0'/0'/1'". The leading "m/" is optional and
// every component must be hardened, as ed25519 derivation requires.
func ParseHDPath(s string) (HDPath, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "m/")
	if s == "" {
		return nil, fmt.Errorf("empty derivation path")
	}
	parts := strings.Split(s, "/")
	path := make(HDPath, 0, len(parts))
	for _, p := range parts {
		n, ok := strings.CutSuffix(p, "'")
		if !ok {
			n, ok = strings.CutSuffix(p, "h")
		}
		if !ok {
			return nil, fmt.Errorf("derivation path %q: component %q must be hardened", s, p)
		}
		v, err := strconv.ParseUint(n, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("derivation path %q: invalid component %q", s, p)
		}
		path = append(path, uint32(v)|hardened)
	}
	return path, nil
}

func (p HDPath) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = strconv.FormatUint(uint64(c&^hardened), 10) + "'"
	}
	return strings.Join(parts, "/")
}
