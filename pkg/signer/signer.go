package signer

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/peanutprotocol/peanut-go/pkg/binding"
	"github.com/peanutprotocol/peanut-go/pkg/keys"
)

var (
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	ErrInvalidRecoveryId      = errors.New("invalid signature recovery id")
	ErrNonCanonicalSignature  = errors.New("signature values out of range")
)

// Sign signs payload under the wallet signed-message construction.
func Sign(payload []byte, kp *keys.KeyPair) (Signature, error) {
	return SignDigest(binding.PrefixedDigest(payload), kp)
}

// SignString signs the UTF-8 bytes of payload.
func SignString(payload string, kp *keys.KeyPair) (Signature, error) {
	return Sign([]byte(payload), kp)
}

// SignDigest signs an already built digest. The nonce is deterministic
// (RFC 6979) and s is always in the lower half of the curve order.
func SignDigest(d binding.Digest, kp *keys.KeyPair) (Signature, error) {
	if kp == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	sig, err := ethcrypto.Sign(d.Bytes(), kp.PrivateKey())
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s digest: %w", d.Mode, err)
	}
	// Adjust V from 0/1 to 27/28 for Ethereum compatibility.
	if sig[64] < recoveryIdOffset {
		sig[64] += recoveryIdOffset
	}
	return Signature(sig), nil
}

// RecoverAddress recovers the signer of payload under the prefixed construction.
func RecoverAddress(payload []byte, sig Signature) (common.Address, error) {
	return RecoverAddressFromDigest(binding.PrefixedDigest(payload), sig)
}

// RecoverAddressFromDigest recovers the signing address for a pre-computed digest.
// V may be 0/1 or 27/28; high-s signatures are rejected.
func RecoverAddressFromDigest(d binding.Digest, sig Signature) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: got %d bytes", ErrInvalidSignatureLength, len(sig))
	}
	localSig := make([]byte, SignatureLength)
	copy(localSig, sig)

	switch v := localSig[64]; v {
	case 0, 1:
	case recoveryIdOffset, recoveryIdOffset + 1:
		localSig[64] = v - recoveryIdOffset
	default:
		return common.Address{}, fmt.Errorf("%w: %d", ErrInvalidRecoveryId, v)
	}

	if !ethcrypto.ValidateSignatureValues(localSig[64], sig.R(), sig.S(), true) {
		return common.Address{}, ErrNonCanonicalSignature
	}

	pubKey, err := ethcrypto.SigToPub(d.Bytes(), localSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("signature recovery failed: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}

// Verify reports whether sig is a signature by expected over payload.
func Verify(payload []byte, sig Signature, expected common.Address) bool {
	return VerifyDigest(binding.PrefixedDigest(payload), sig, expected)
}

// VerifyDigest reports whether sig is a signature by expected over d. Malformed
// signatures are treated as invalid.
func VerifyDigest(d binding.Digest, sig Signature, expected common.Address) bool {
	recovered, err := RecoverAddressFromDigest(d, sig)
	if err != nil {
		return false
	}
	return recovered == expected
}
