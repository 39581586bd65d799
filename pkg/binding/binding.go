// Package binding turns a recipient address into the 32-byte digest a link key
// signs.
//
// Two constructions exist and the mode is always carried with the digest:
//
//	Unprefixed: keccak256(abi.encodePacked(address))
//	Prefixed:   keccak256("\x19Ethereum Signed Message:\n" || len(payload) || payload)
//
// The Peanut contract recovers withdrawals against
// Prefixed(Unprefixed(recipient)), see WithdrawalDigest.
package binding

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// SignedMessagePrefix is the EIP-191 version 0x45 prefix used by wallet signing.
const SignedMessagePrefix = "\x19Ethereum Signed Message:\n"

type Mode uint8

const (
	ModeUnprefixed Mode = iota
	ModePrefixed
)

func (m Mode) String() string {
	switch m {
	case ModeUnprefixed:
		return "unprefixed"
	case ModePrefixed:
		return "prefixed"
	default:
		return "unknown"
	}
}

// Digest is a 32-byte hash tagged with the construction that produced it.
type Digest struct {
	Hash common.Hash `json:"hash"`
	Mode Mode        `json:"mode"`
}

func (d Digest) Bytes() []byte { return d.Hash.Bytes() }

func (d Digest) String() string { return d.Hash.Hex() }

// UnprefixedAddressDigest hashes the packed 20-byte address, matching
// keccak256(abi.encodePacked(address)) on-chain.
func UnprefixedAddressDigest(addr common.Address) Digest {
	return Digest{Hash: keccak256(addr.Bytes()), Mode: ModeUnprefixed}
}

// PrefixedDigest applies the wallet signed-message construction to payload.
// The length is the ASCII decimal byte count of payload, not a fixed-width
// field.
func PrefixedDigest(payload []byte) Digest {
	return Digest{
		Hash: keccak256([]byte(SignedMessagePrefix), []byte(strconv.Itoa(len(payload))), payload),
		Mode: ModePrefixed,
	}
}

// WithdrawalDigest is the digest a withdrawal signature must cover: the
// prefixed form of the unprefixed recipient hash ("...Message:\n32" || hash).
func WithdrawalDigest(recipient common.Address) Digest {
	return PrefixedDigest(UnprefixedAddressDigest(recipient).Bytes())
}

func keccak256(chunks ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}
