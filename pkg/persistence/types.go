package persistence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/peanutprotocol/peanut-go/pkg/claim"
	"github.com/peanutprotocol/peanut-go/pkg/signer"
)

// ClaimKey identifies a deposit on a specific escrow contract.
type ClaimKey struct {
	ChainId         uint64 `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	DepositIndex    uint64 `json:"depositIndex"`
}

// NewClaimKey builds a normalized key; the contract address is lowercased.
func NewClaimKey(chainId uint64, contract common.Address, index uint64) ClaimKey {
	return ClaimKey{
		ChainId:         chainId,
		ContractAddress: strings.ToLower(contract.Hex()),
		DepositIndex:    index,
	}
}

// Normalize rewrites the contract address as lowercase 0x-prefixed hex, so
// "0xAbC…" and "abc…" name the same deposit.
func (k ClaimKey) Normalize() ClaimKey {
	if common.IsHexAddress(k.ContractAddress) {
		k.ContractAddress = strings.ToLower(common.HexToAddress(k.ContractAddress).Hex())
		return k
	}
	k.ContractAddress = strings.ToLower(k.ContractAddress)
	return k
}

// String renders the key as a storage key. The index is zero padded so keys
// of one contract sort numerically.
func (k ClaimKey) String() string {
	k = k.Normalize()
	return fmt.Sprintf("%d:%s:%020d", k.ChainId, k.ContractAddress, k.DepositIndex)
}

// Less orders keys by chain id, contract and deposit index.
func (k ClaimKey) Less(other ClaimKey) bool {
	if k.ChainId != other.ChainId {
		return k.ChainId < other.ChainId
	}
	if k.ContractAddress != other.ContractAddress {
		return k.ContractAddress < other.ContractAddress
	}
	return k.DepositIndex < other.DepositIndex
}

// ClaimRecord is a withdrawal claim accepted by the relay, stored in hex form.
type ClaimRecord struct {
	Id              string `json:"id"`
	ChainId         uint64 `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	DepositIndex    uint64 `json:"depositIndex"`
	Recipient       string `json:"recipient"`
	RecipientHash   string `json:"recipientHash"`
	Signature       string `json:"signature"`
	Signer          string `json:"signer"`
	CreatedAt       int64  `json:"createdAt"`
}

// NewClaimRecord wraps a verified claim with a fresh id and timestamp.
func NewClaimRecord(chainId uint64, contract common.Address, c *claim.Claim, signerAddr common.Address) *ClaimRecord {
	return &ClaimRecord{
		Id:              uuid.New().String(),
		ChainId:         chainId,
		ContractAddress: strings.ToLower(contract.Hex()),
		DepositIndex:    c.DepositIndex,
		Recipient:       c.Recipient.Hex(),
		RecipientHash:   c.RecipientHash.Hex(),
		Signature:       c.Signature.String(),
		Signer:          signerAddr.Hex(),
		CreatedAt:       time.Now().Unix(),
	}
}

func (r *ClaimRecord) Key() ClaimKey {
	return ClaimKey{
		ChainId:         r.ChainId,
		ContractAddress: r.ContractAddress,
		DepositIndex:    r.DepositIndex,
	}.Normalize()
}

// Validate checks the fields a backend relies on.
func (r *ClaimRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("cannot save nil ClaimRecord")
	}
	if r.Id == "" {
		return fmt.Errorf("claim record id cannot be empty")
	}
	if r.ChainId == 0 {
		return fmt.Errorf("claim record chain id cannot be zero")
	}
	if !common.IsHexAddress(r.ContractAddress) {
		return fmt.Errorf("invalid contract address: %q", r.ContractAddress)
	}
	return nil
}

// Claim rebuilds the signed claim from its hex form.
func (r *ClaimRecord) Claim() (*claim.Claim, error) {
	if !common.IsHexAddress(r.Recipient) {
		return nil, fmt.Errorf("invalid recipient: %q", r.Recipient)
	}
	sig, err := signer.ParseSignature(r.Signature)
	if err != nil {
		return nil, err
	}
	c := &claim.Claim{
		DepositIndex:  r.DepositIndex,
		Recipient:     common.HexToAddress(r.Recipient),
		RecipientHash: common.HexToHash(r.RecipientHash),
		Signature:     sig,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SortClaimRecords orders records by their ClaimKey.
func SortClaimRecords(records []*ClaimRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key().Less(records[j].Key())
	})
}
