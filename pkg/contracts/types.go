package contracts

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ContractType is the asset class of a deposit as encoded in makeDeposit.
type ContractType uint8

const (
	ContractTypeETH ContractType = iota
	ContractTypeERC20
	ContractTypeERC721
	ContractTypeERC1155
)

var ErrUnknownContractType = fmt.Errorf("unknown contract type")

func (t ContractType) String() string {
	switch t {
	case ContractTypeETH:
		return "eth"
	case ContractTypeERC20:
		return "erc20"
	case ContractTypeERC721:
		return "erc721"
	case ContractTypeERC1155:
		return "erc1155"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// IsValid reports whether t is one of the four types the contract accepts.
func (t ContractType) IsValid() bool {
	return t <= ContractTypeERC1155
}

// ParseContractType accepts the names returned by String as well as the raw
// numeric values 0-3.
func ParseContractType(s string) (ContractType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eth", "native", "0":
		return ContractTypeETH, nil
	case "erc20", "1":
		return ContractTypeERC20, nil
	case "erc721", "2":
		return ContractTypeERC721, nil
	case "erc1155", "3":
		return ContractTypeERC1155, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownContractType, s)
	}
}

// Deposit mirrors the on-chain deposit struct. PubKey20 is the link key address.
type Deposit struct {
	PubKey20     common.Address `json:"pubKey20"`
	Amount       *big.Int       `json:"amount"`
	TokenAddress common.Address `json:"tokenAddress"`
	ContractType ContractType   `json:"contractType"`
	TokenId      *big.Int       `json:"tokenId"`
}

// Validate applies the same per-type rules the contract enforces before it
// pulls the asset.
func (d *Deposit) Validate() error {
	if d == nil {
		return fmt.Errorf("deposit cannot be nil")
	}
	if d.PubKey20 == (common.Address{}) {
		return fmt.Errorf("pubKey20 cannot be the zero address")
	}
	if !d.ContractType.IsValid() {
		return fmt.Errorf("%w: %d", ErrUnknownContractType, uint8(d.ContractType))
	}
	if d.Amount != nil && d.Amount.Sign() < 0 {
		return fmt.Errorf("amount cannot be negative")
	}
	if d.TokenId != nil && d.TokenId.Sign() < 0 {
		return fmt.Errorf("token id cannot be negative")
	}

	hasToken := d.TokenAddress != (common.Address{})
	switch d.ContractType {
	case ContractTypeETH:
		if hasToken {
			return fmt.Errorf("eth deposits must not set a token address")
		}
		if d.amount().Sign() == 0 {
			return fmt.Errorf("eth deposits require a positive amount")
		}
	case ContractTypeERC20:
		if !hasToken {
			return fmt.Errorf("erc20 deposits require a token address")
		}
		if d.amount().Sign() == 0 {
			return fmt.Errorf("erc20 deposits require a positive amount")
		}
	case ContractTypeERC721:
		if !hasToken {
			return fmt.Errorf("erc721 deposits require a token address")
		}
		if d.amount().Cmp(big.NewInt(1)) > 0 {
			return fmt.Errorf("erc721 deposits carry a single token")
		}
	case ContractTypeERC1155:
		if !hasToken {
			return fmt.Errorf("erc1155 deposits require a token address")
		}
		if d.amount().Sign() == 0 {
			return fmt.Errorf("erc1155 deposits require a positive amount")
		}
	}
	return nil
}

// TxValue is the native value that must accompany the makeDeposit call.
func (d *Deposit) TxValue() *big.Int {
	if d.ContractType == ContractTypeETH {
		return new(big.Int).Set(d.amount())
	}
	return new(big.Int)
}

func (d *Deposit) amount() *big.Int {
	if d.Amount == nil {
		return new(big.Int)
	}
	return d.Amount
}

func (d *Deposit) tokenId() *big.Int {
	if d.TokenId == nil {
		return new(big.Int)
	}
	return d.TokenId
}
