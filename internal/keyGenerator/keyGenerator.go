package keyGenerator

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/peanutprotocol/peanut-go/pkg/claim"
	"github.com/peanutprotocol/peanut-go/pkg/keys"
)

// GeneratedLinkKey is the public view of a link key held by a generator.
type GeneratedLinkKey struct {
	KeyId     string
	Label     string
	Address   common.Address
	PublicKey []byte
}

func (glk *GeneratedLinkKey) GetPublicKeyHex() (string, error) {
	if len(glk.PublicKey) == 0 {
		return "", fmt.Errorf("public key is empty")
	}
	return hexutil.Encode(glk.PublicKey), nil
}

// GetPublicKeyBytesUnprefixed returns the public key without the 0x04 prefix (64 bytes)
func (glk *GeneratedLinkKey) GetPublicKeyBytesUnprefixed() ([]byte, error) {
	if len(glk.PublicKey) == keys.PublicKeyLength && glk.PublicKey[0] == 0x04 {
		return glk.PublicKey[1:], nil
	}
	if len(glk.PublicKey) == keys.PublicKeyLength-1 {
		return glk.PublicKey, nil
	}
	return nil, fmt.Errorf("unexpected public key length: %d", len(glk.PublicKey))
}

// IKeyGenerator creates and holds link keys for deposits and signs their
// withdrawals without handing out private key material.
type IKeyGenerator interface {
	GenerateLinkKey(ctx context.Context, label string) (*GeneratedLinkKey, error)
	DeriveLinkKey(ctx context.Context, label string, secret string) (*GeneratedLinkKey, error)
	GetLinkKeyById(ctx context.Context, keyId string) (*GeneratedLinkKey, error)
	SignWithdrawal(ctx context.Context, keyId string, depositIndex uint64, recipient common.Address) (*claim.Claim, error)
}
