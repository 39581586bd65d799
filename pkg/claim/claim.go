package claim

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/peanutprotocol/peanut-go/pkg/binding"
	"github.com/peanutprotocol/peanut-go/pkg/keys"
	"github.com/peanutprotocol/peanut-go/pkg/signer"
)

// Claim is the argument set of a withdrawDeposit call. RecipientHash is the
// prefixed withdrawal digest of Recipient; the contract recomputes it and
// recovers Signature against it.
type Claim struct {
	DepositIndex  uint64           `json:"depositIndex"`
	Recipient     common.Address   `json:"recipient"`
	RecipientHash common.Hash      `json:"recipientHash"`
	Signature     signer.Signature `json:"signature"`
}

// NewWithdrawalClaim signs recipient with the link key of the deposit at index.
func NewWithdrawalClaim(index uint64, recipient common.Address, kp *keys.KeyPair) (*Claim, error) {
	if kp == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	if recipient == (common.Address{}) {
		return nil, fmt.Errorf("recipient cannot be the zero address")
	}

	digest := binding.WithdrawalDigest(recipient)
	sig, err := signer.SignDigest(digest, kp)
	if err != nil {
		return nil, fmt.Errorf("failed to sign withdrawal: %w", err)
	}

	return &Claim{
		DepositIndex:  index,
		Recipient:     recipient,
		RecipientHash: digest.Hash,
		Signature:     sig,
	}, nil
}

// Validate checks the claim is well formed. It does not check who signed it.
func (c *Claim) Validate() error {
	if c == nil {
		return fmt.Errorf("claim cannot be nil")
	}
	if c.Recipient == (common.Address{}) {
		return fmt.Errorf("recipient cannot be the zero address")
	}
	if len(c.Signature) != signer.SignatureLength {
		return fmt.Errorf("%w: got %d bytes", signer.ErrInvalidSignatureLength, len(c.Signature))
	}
	if want := binding.WithdrawalDigest(c.Recipient).Hash; c.RecipientHash != want {
		return fmt.Errorf("recipient hash %s does not match recipient %s", c.RecipientHash.Hex(), c.Recipient.Hex())
	}
	return nil
}

// Signer recovers the link key address that produced the claim.
func (c *Claim) Signer() (common.Address, error) {
	if err := c.Validate(); err != nil {
		return common.Address{}, err
	}
	return signer.RecoverAddressFromDigest(binding.WithdrawalDigest(c.Recipient), c.Signature)
}

// Verify reports whether the claim is well formed and signed by expectedSigner,
// which is the address stored with the deposit.
func (c *Claim) Verify(expectedSigner common.Address) bool {
	recovered, err := c.Signer()
	if err != nil {
		return false
	}
	return recovered == expectedSigner
}
