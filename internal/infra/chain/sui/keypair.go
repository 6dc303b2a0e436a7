package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Signature scheme flag for Ed25519.
const ed25519Flag byte = 0x00

// Intent scopes.
const (
	intentTransactionData byte = 0
	intentPersonalMessage byte = 3
)

// ErrInvalidKey is returned for malformed private keys.
var ErrInvalidKey = errors.New("invalid private key")

// Keypair is an Ed25519 Sui account key.
type Keypair struct {
	priv ed25519.PrivateKey
}

// NewKeypairFromSeed creates a keypair from a 32-byte seed.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes", ErrInvalidKey, ed25519.SeedSize)
	}
	return &Keypair{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// ParsePrivateKey accepts a hex seed ("0x..." or bare) or a base64 keystore
// entry (flag byte followed by the 32-byte seed).
func ParsePrivateKey(s string) (*Keypair, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKey)
	}

	hexStr := strings.TrimPrefix(s, "0x")
	if b, err := hex.DecodeString(hexStr); err == nil && len(b) == ed25519.SeedSize {
		return NewKeypairFromSeed(b)
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex or base64", ErrInvalidKey)
	}
	switch {
	case len(b) == ed25519.SeedSize+1 && b[0] == ed25519Flag:
		return NewKeypairFromSeed(b[1:])
	case len(b) == ed25519.SeedSize:
		return NewKeypairFromSeed(b)
	default:
		return nil, fmt.Errorf("%w: unsupported key length %d", ErrInvalidKey, len(b))
	}
}

// PublicKey returns the raw 32-byte public key.
func (k *Keypair) PublicKey() []byte {
	return k.priv.Public().(ed25519.PublicKey)
}

// Address derives the Sui address: blake2b-256(flag || pubkey).
func (k *Keypair) Address() string {
	h := blake2b.Sum256(append([]byte{ed25519Flag}, k.PublicKey()...))
	return "0x" + hex.EncodeToString(h[:])
}

// SignTransaction signs BCS TransactionData bytes and returns the serialized
// signature in base64.
func (k *Keypair) SignTransaction(txBytes []byte) string {
	return k.signIntent(intentTransactionData, txBytes)
}

// SignPersonalMessage signs msg under the PersonalMessage intent.
func (k *Keypair) SignPersonalMessage(msg []byte) string {
	var e Encoder
	e.Vec(msg)
	return k.signIntent(intentPersonalMessage, e.Bytes())
}

func (k *Keypair) signIntent(scope byte, payload []byte) string {
	// Intent: scope, version 0, app id 0 (Sui).
	msg := append([]byte{scope, 0, 0}, payload...)
	digest := blake2b.Sum256(msg)
	sig := ed25519.Sign(k.priv, digest[:])

	out := make([]byte, 0, 1+ed25519.SignatureSize+ed25519.PublicKeySize)
	out = append(out, ed25519Flag)
	out = append(out, sig...)
	out = append(out, k.PublicKey()...)
	return base64.StdEncoding.EncodeToString(out)
}

// VerifyTransactionSignature checks a serialized signature against txBytes.
func VerifyTransactionSignature(txBytes []byte, serialized string) (bool, error) {
	raw, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || raw[0] != ed25519Flag {
		return false, fmt.Errorf("unsupported signature encoding")
	}
	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])

	msg := append([]byte{intentTransactionData, 0, 0}, txBytes...)
	digest := blake2b.Sum256(msg)
	return ed25519.Verify(pub, digest[:], sig), nil
}
