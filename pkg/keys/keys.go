// Package keys derives the one-time secp256k1 key pairs that guard Peanut
// deposits.
//
// A deposit stores only the 20-byte address of a link key. The private key
// travels off-chain (usually inside a claim link) and whoever holds it can
// authorize a withdrawal. Key pairs are either drawn from a random source or
// derived deterministically from an arbitrary secret string:
//
//	privateKey = SHA-256(secret)
//	publicKey  = privateKey * G                  (uncompressed, 0x04 || X || Y)
//	address    = keccak256(X || Y)[12:32]
//
// A KeyPair is immutable once built and every constructor validates that the
// three components agree.
package keys

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const (
	// PrivateKeyLength is the size of a secp256k1 private scalar in bytes.
	PrivateKeyLength = 32
	// PublicKeyLength is the size of an uncompressed public key (0x04 || X || Y).
	PublicKeyLength = 65
)

var (
	// ErrRandomSource is returned when the random source cannot supply a full key.
	ErrRandomSource = errors.New("random source unavailable")
	// ErrScalarOutOfRange is returned for scalars that are zero or >= the curve order.
	ErrScalarOutOfRange = errors.New("private key scalar out of curve range")
	// ErrInvalidKeyLength is returned for private keys that are not 32 bytes.
	ErrInvalidKeyLength = errors.New("invalid private key length")
	// ErrInconsistentKeyPair is returned when address, public and private key disagree.
	ErrInconsistentKeyPair = errors.New("inconsistent key pair")
)

// KeyPair is an address / private key / public key triple.
type KeyPair struct {
	address    common.Address
	privateKey [PrivateKeyLength]byte
	publicKey  [PublicKeyLength]byte
}

// ExportedKeyPair is the hex form of a KeyPair, as handed to the sender.
type ExportedKeyPair struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

// GenerateRandomKeyPair draws a fresh key pair from crypto/rand.
func GenerateRandomKeyPair() (*KeyPair, error) {
	return GenerateRandomKeyPairFromReader(rand.Reader)
}

// GenerateRandomKeyPairFromReader reads exactly 32 bytes from r and uses them as
// the private scalar. A short read aborts before any key is produced, and an
// out-of-range draw is reported rather than redrawn.
func GenerateRandomKeyPairFromReader(r io.Reader) (*KeyPair, error) {
	if r == nil {
		return nil, ErrRandomSource
	}
	var scalar [PrivateKeyLength]byte
	if _, err := io.ReadFull(r, scalar[:]); err != nil {
		return nil, errors.Wrapf(ErrRandomSource, "failed to read %d random bytes: %v", PrivateKeyLength, err)
	}
	return newKeyPair(scalar)
}

// DeriveKeyPairFromSecret hashes secret with SHA-256 and uses the digest as the
// private scalar. Equal secrets always give equal key pairs. The secret's
// strength is not checked.
func DeriveKeyPairFromSecret(secret string) (*KeyPair, error) {
	return newKeyPair(sha256.Sum256([]byte(secret)))
}

// NewKeyPairFromPrivateKey loads an existing 32-byte private key.
func NewKeyPairFromPrivateKey(privateKey []byte) (*KeyPair, error) {
	if len(privateKey) != PrivateKeyLength {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "expected %d bytes, got %d", PrivateKeyLength, len(privateKey))
	}
	var scalar [PrivateKeyLength]byte
	copy(scalar[:], privateKey)
	return newKeyPair(scalar)
}

// NewKeyPairFromHex loads a hex encoded private key. The 0x prefix is optional.
func NewKeyPairFromHex(privateKeyHex string) (*KeyPair, error) {
	trimmed := strings.TrimSpace(privateKeyHex)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		trimmed = "0x" + trimmed
	}
	raw, err := hexutil.Decode(strings.ToLower(trimmed))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode private key hex")
	}
	return NewKeyPairFromPrivateKey(raw)
}

// NewKeyPairFromECDSA wraps an existing go-ethereum private key.
func NewKeyPairFromECDSA(privateKey *ecdsa.PrivateKey) (*KeyPair, error) {
	if privateKey == nil || privateKey.D == nil {
		return nil, errors.New("private key cannot be nil")
	}
	return NewKeyPairFromPrivateKey(crypto.FromECDSA(privateKey))
}

func newKeyPair(scalar [PrivateKeyLength]byte) (*KeyPair, error) {
	if err := checkScalar(&scalar); err != nil {
		return nil, err
	}

	priv, err := crypto.ToECDSA(scalar[:])
	if err != nil {
		return nil, errors.Wrapf(ErrScalarOutOfRange, "%v", err)
	}

	kp := &KeyPair{
		address:    crypto.PubkeyToAddress(priv.PublicKey),
		privateKey: scalar,
	}
	copy(kp.publicKey[:], crypto.FromECDSAPub(&priv.PublicKey))

	if err := kp.Validate(); err != nil {
		return nil, err
	}
	return kp, nil
}

// checkScalar rejects zero and values >= N instead of reducing them mod N.
func checkScalar(scalar *[PrivateKeyLength]byte) error {
	var s secp256k1.ModNScalar
	if overflow := s.SetBytes(scalar); overflow != 0 {
		return ErrScalarOutOfRange
	}
	if s.IsZero() {
		return ErrScalarOutOfRange
	}
	return nil
}

// DeriveAddress applies the chain's address rule to an uncompressed public key.
func DeriveAddress(publicKey *ecdsa.PublicKey) common.Address {
	return crypto.PubkeyToAddress(*publicKey)
}

// DerivePublicKey returns privateKey * G.
func DerivePublicKey(privateKey *ecdsa.PrivateKey) *ecdsa.PublicKey {
	x, y := crypto.S256().ScalarBaseMult(crypto.FromECDSA(privateKey))
	return &ecdsa.PublicKey{Curve: crypto.S256(), X: x, Y: y}
}

// Validate re-derives the public key and address and checks they match.
func (kp *KeyPair) Validate() error {
	if kp == nil {
		return errors.Wrap(ErrInconsistentKeyPair, "nil key pair")
	}
	priv := kp.PrivateKey()
	pub := DerivePublicKey(priv)
	if !bytes.Equal(crypto.FromECDSAPub(pub), kp.publicKey[:]) {
		return errors.Wrap(ErrInconsistentKeyPair, "public key does not match private key")
	}
	if DeriveAddress(pub) != kp.address {
		return errors.Wrap(ErrInconsistentKeyPair, "address does not match public key")
	}
	return nil
}

// Address returns the 20-byte account address.
func (kp *KeyPair) Address() common.Address { return kp.address }

// PrivateKey returns a fresh go-ethereum private key; mutating it does not
// affect the KeyPair.
func (kp *KeyPair) PrivateKey() *ecdsa.PrivateKey {
	return crypto.ToECDSAUnsafe(kp.PrivateKeyBytes())
}

// PrivateKeyBytes returns a copy of the 32-byte private scalar.
func (kp *KeyPair) PrivateKeyBytes() []byte {
	out := make([]byte, PrivateKeyLength)
	copy(out, kp.privateKey[:])
	return out
}

// PrivateKeyHex returns the 0x-prefixed private key.
func (kp *KeyPair) PrivateKeyHex() string { return hexutil.Encode(kp.privateKey[:]) }

// PublicKey returns the public key as a go-ethereum ecdsa key.
func (kp *KeyPair) PublicKey() *ecdsa.PublicKey {
	pub, err := crypto.UnmarshalPubkey(kp.publicKey[:])
	if err != nil {
		// unreachable: publicKey is always set from a validated point
		panic(err)
	}
	return pub
}

// PublicKeyBytes returns a copy of the 65-byte uncompressed public key.
func (kp *KeyPair) PublicKeyBytes() []byte {
	out := make([]byte, PublicKeyLength)
	copy(out, kp.publicKey[:])
	return out
}

// PublicKeyHex returns the 0x04-prefixed uncompressed public key in hex.
func (kp *KeyPair) PublicKeyHex() string { return hexutil.Encode(kp.publicKey[:]) }

// Equal reports whether both key pairs hold the same triple.
func (kp *KeyPair) Equal(other *KeyPair) bool {
	if kp == nil || other == nil {
		return kp == other
	}
	return kp.address == other.address &&
		kp.privateKey == other.privateKey &&
		kp.publicKey == other.publicKey
}

// Export renders the key pair as hex strings. The private key is included.
func (kp *KeyPair) Export() ExportedKeyPair {
	return ExportedKeyPair{
		Address:    kp.address.Hex(),
		PrivateKey: kp.PrivateKeyHex(),
		PublicKey:  kp.PublicKeyHex(),
	}
}

// String only shows the address so key pairs can be logged safely.
func (kp *KeyPair) String() string { return kp.address.Hex() }
