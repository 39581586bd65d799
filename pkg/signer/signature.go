package signer

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	// SignatureLength is r (32) || s (32) || v (1).
	SignatureLength = 65

	recoveryIdOffset = 27
)

// Signature is a 65-byte secp256k1 signature with V encoded as 27/28.
type Signature []byte

// ParseSignature decodes a 0x-prefixed hex signature and checks its length.
func ParseSignature(s string) (Signature, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature hex: %w", err)
	}
	if len(raw) != SignatureLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSignatureLength, len(raw))
	}
	return Signature(raw), nil
}

// R returns the r component, or nil for malformed signatures.
func (s Signature) R() *big.Int {
	if len(s) != SignatureLength {
		return nil
	}
	return new(big.Int).SetBytes(s[:32])
}

// S returns the s component, or nil for malformed signatures.
func (s Signature) S() *big.Int {
	if len(s) != SignatureLength {
		return nil
	}
	return new(big.Int).SetBytes(s[32:64])
}

// V returns the trailing recovery byte as stored.
func (s Signature) V() byte {
	if len(s) != SignatureLength {
		return 0
	}
	return s[64]
}

// MarshalJSON implements the json.Marshaler interface, encoding the signature as a hex string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	decoded, err := hexutil.Decode(hexStr)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// String implements the fmt.Stringer interface
func (s Signature) String() string {
	return hexutil.Encode(s)
}
