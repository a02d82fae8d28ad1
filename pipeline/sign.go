package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/signer"
	"go.uber.org/zap"
)

// Sign method names as used by --sign-with.
const (
	SignWithPrivateKey = "private-key"
	SignWithKeychain   = "keychain"
	SignWithLedger     = "ledger"
	SignWithManual     = "manual"
)

// SignOption is one way of signing a transaction.
type SignOption interface {
	Name() string
	// Available reports whether the option can be used in sc, e.g. the keychain needs a network.
	Available(sc SignContext) bool
	// Sign returns the signed transaction, or nil when the option ends the
	// pipeline itself. tx must not be modified.
	Sign(ctx context.Context, sc SignContext, tx ledger.Transaction, args SignArgs) (*ledger.SignedTransaction, error)
}

// SignRegistry is the fixed set of sign options chosen at startup.
type SignRegistry struct {
	options []SignOption
}

func NewSignRegistry(options ...SignOption) *SignRegistry {
	return &SignRegistry{options: options}
}

// DefaultSignOptions returns every option. keychain and driver may be nil, which makes
// the corresponding option unavailable.
func DefaultSignOptions(r *Resolver, keychain *signer.Keychain, driver signer.DeviceDriver) []SignOption {
	return []SignOption{
		privateKeyOption{r: r},
		keychainOption{r: r, keychain: keychain},
		hardwareOption{r: r, driver: driver},
		manualOption{r: r},
	}
}

// Available lists the usable options in registration order.
func (reg *SignRegistry) Available(sc SignContext) []SignOption {
	var out []SignOption
	for _, o := range reg.options {
		if o.Available(sc) {
			out = append(out, o)
		}
	}
	return out
}

// SignStep picks a sign option and signs with it.
type SignStep struct {
	r        *Resolver
	log      *zap.Logger
	registry *SignRegistry
}

func NewSignStep(log *zap.Logger, r *Resolver, registry *SignRegistry) *SignStep {
	return &SignStep{r: r, log: log, registry: registry}
}

// Sign returns the signed transaction, or nil if the chosen option already finished the job.
func (s *SignStep) Sign(ctx context.Context, sc SignContext, tx ledger.Transaction, args SignArgs) (*ledger.SignedTransaction, error) {
	available := s.registry.Available(sc)
	if len(available) == 0 {
		return nil, &SigningError{Method: "any", Err: fmt.Errorf("no sign method is available")}
	}
	names := make([]string, len(available))
	for i, o := range available {
		names[i] = o.Name()
	}

	opt, err := Resolve(ctx, s.r, sc.NetworkContext, Field[SignOption]{
		Name:    "sign-with",
		Prompt:  "How do you want to sign the transaction?",
		Preset:  args.Method,
		Choices: names,
		Parse: func(v string) (SignOption, error) {
			v = strings.ToLower(strings.TrimSpace(v))
			for _, o := range available {
				if o.Name() == v {
					return o, nil
				}
			}
			for _, o := range s.registry.options {
				if o.Name() == v {
					return nil, fmt.Errorf("%s signing is not available here", v)
				}
			}
			return nil, fmt.Errorf("unknown sign method %q, expected one of %s", v, strings.Join(names, ", "))
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("Signing transaction", zap.String("method", opt.Name()), zap.String("signer_id", sc.SignerID.String()))
	signed, err := opt.Sign(ctx, sc, tx, args)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &SigningError{Method: opt.Name(), Err: err}
	}
	return signed, nil
}

// accessKey returns the nonce and block hash tx must carry to be signed by pk. Online both
// come from the network; offline the operator supplies them.
func accessKey(ctx context.Context, r *Resolver, sc SignContext, pk ledger.PublicKey, args SignArgs) (uint64, ledger.CryptoHash, error) {
	if sc.Online() {
		q := sc.Connection.Client
		ak, err := q.ViewAccessKey(ctx, sc.SignerID, pk, ledger.FinalBlock())
		if err != nil {
			return 0, ledger.CryptoHash{}, fmt.Errorf("access key %s of %s: %w", pk, sc.SignerID, err)
		}
		block, err := q.Block(ctx, ledger.FinalBlock())
		if err != nil {
			return 0, ledger.CryptoHash{}, fmt.Errorf("latest block: %w", err)
		}
		return ak.Nonce + 1, block.Hash, nil
	}

	nonce, err := Resolve(ctx, r, sc.NetworkContext, Field[uint64]{
		Name: "nonce",
		Prompt: "Enter the transaction nonce: the current nonce of the access key plus 1 " +
			"(on a connected machine, `nearcli view access-keys " + sc.SignerID.String() + "` shows it)",
		Preset: args.Nonce,
		Parse: func(s string) (uint64, error) {
			n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("nonce must be a positive integer")
			}
			if n == 0 {
				return 0, fmt.Errorf("nonce must be greater than 0")
			}
			return n, nil
		},
	})
	if err != nil {
		return 0, ledger.CryptoHash{}, err
	}
	hash, err := Resolve(ctx, r, sc.NetworkContext, Field[ledger.CryptoHash]{
		Name: "block-hash",
		Prompt: "Enter a recent block hash; the transaction expires about 24 hours after that block " +
			"(on a connected machine, `nearcli view block` shows the latest one)",
		Preset: args.BlockHash,
		Parse:  ledger.ParseCryptoHash,
	})
	if err != nil {
		return 0, ledger.CryptoHash{}, err
	}
	return nonce, hash, nil
}

type privateKeyOption struct {
	r *Resolver
}

func (privateKeyOption) Name() string              { return SignWithPrivateKey }
func (privateKeyOption) Available(SignContext) bool { return true }

func (o privateKeyOption) Sign(ctx context.Context, sc SignContext, tx ledger.Transaction, args SignArgs) (*ledger.SignedTransaction, error) {
	sk, err := Resolve(ctx, o.r, sc.NetworkContext, Field[ledger.SecretKey]{
		Name:   "signer-secret-key",
		Prompt: fmt.Sprintf("Enter the secret key of %s (ed25519:...)", sc.SignerID),
		Preset: args.SecretKey,
		Secret: true,
		Parse:  ledger.ParseSecretKey,
	})
	if err != nil {
		return nil, err
	}
	nonce, hash, err := accessKey(ctx, o.r, sc, sk.PublicKey(), args)
	if err != nil {
		return nil, err
	}
	return tx.WithAccessKey(sk.PublicKey(), nonce, hash).Sign(sk), nil
}

type keychainOption struct {
	r        *Resolver
	keychain *signer.Keychain
}

func (keychainOption) Name() string { return SignWithKeychain }

// Credentials are stored per network, so the keychain needs one.
func (o keychainOption) Available(sc SignContext) bool {
	return o.keychain != nil && sc.Online()
}

func (o keychainOption) Sign(ctx context.Context, sc SignContext, tx ledger.Transaction, args SignArgs) (*ledger.SignedTransaction, error) {
	sk, err := o.keychain.Load(sc.NetworkName(), sc.SignerID)
	if err != nil {
		return nil, err
	}
	nonce, hash, err := accessKey(ctx, o.r, sc, sk.PublicKey(), args)
	if err != nil {
		return nil, err
	}
	return tx.WithAccessKey(sk.PublicKey(), nonce, hash).Sign(sk), nil
}

type hardwareOption struct {
	r      *Resolver
	driver signer.DeviceDriver
}

func (hardwareOption) Name() string { return SignWithLedger }

func (o hardwareOption) Available(SignContext) bool {
	return o.driver != nil
}

func (o hardwareOption) Sign(ctx context.Context, sc SignContext, tx ledger.Transaction, args SignArgs) (*ledger.SignedTransaction, error) {
	path, err := Resolve(ctx, o.r, sc.NetworkContext, Field[signer.HDPath]{
		Name:    "hd-path",
		Prompt:  "Enter the key's derivation path on the device",
		Preset:  args.HDPath,
		Default: signer.DefaultHDPath,
		Parse:   signer.ParseHDPath,
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(o.r.Out(), "Reading the public key at %s, confirm on the device\n", path)
	pk, err := o.driver.PublicKey(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	nonce, hash, err := accessKey(ctx, o.r, sc, pk, args)
	if err != nil {
		return nil, err
	}

	unsigned := tx.WithAccessKey(pk, nonce, hash)
	fmt.Fprintln(o.r.Out(), "Confirm the transaction on the device")
	sig, err := o.driver.Sign(ctx, path, unsigned.Serialize())
	if err != nil {
		return nil, fmt.Errorf("device refused to sign: %w", err)
	}
	signed := ledger.NewSignedTransaction(unsigned, sig)
	if !signed.Verify() {
		return nil, fmt.Errorf("device returned a signature that does not match %s", pk)
	}
	return signed, nil
}

// manualOption prints the unsigned transaction for signing elsewhere and stops.
type manualOption struct {
	r *Resolver
}

func (manualOption) Name() string              { return SignWithManual }
func (manualOption) Available(SignContext) bool { return true }

func (o manualOption) Sign(ctx context.Context, sc SignContext, tx ledger.Transaction, args SignArgs) (*ledger.SignedTransaction, error) {
	pk, err := Resolve(ctx, o.r, sc.NetworkContext, publicKeyField("signer-public-key",
		fmt.Sprintf("Enter the public key %s will sign with", sc.SignerID), args.PublicKey))
	if err != nil {
		return nil, err
	}
	nonce, hash, err := accessKey(ctx, o.r, sc, pk, args)
	if err != nil {
		return nil, err
	}
	unsigned := tx.WithAccessKey(pk, nonce, hash)

	out := o.r.Out()
	fmt.Fprintln(out, "Unsigned transaction (base64):")
	fmt.Fprintln(out, unsigned.Base64())
	fmt.Fprintf(out, "Transaction hash to sign: %s\n", unsigned.Hash())
	return nil, nil
}
