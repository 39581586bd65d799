package contracts

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/peanutprotocol/peanut-go/pkg/claim"
	"github.com/pkg/errors"
)

const (
	MethodMakeDeposit     = "makeDeposit"
	MethodWithdrawDeposit = "withdrawDeposit"
)

// PeanutABI covers the deposit and withdrawal entry points shared by the v3
// and v4 escrow contracts.
const PeanutABI = `[
	{
		"type": "function",
		"name": "makeDeposit",
		"stateMutability": "payable",
		"inputs": [
			{"name": "_tokenAddress", "type": "address"},
			{"name": "_contractType", "type": "uint8"},
			{"name": "_amount", "type": "uint256"},
			{"name": "_tokenId", "type": "uint256"},
			{"name": "_pubKey20", "type": "address"}
		],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "withdrawDeposit",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "_index", "type": "uint256"},
			{"name": "_recipientAddress", "type": "address"},
			{"name": "_recipientAddressHash", "type": "bytes32"},
			{"name": "_signature", "type": "bytes"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	}
]`

var peanutABI = mustParseABI(PeanutABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid peanut ABI: %v", err))
	}
	return parsed
}

// PackMakeDeposit encodes the makeDeposit calldata for d. Use d.TxValue() as
// the transaction value.
func PackMakeDeposit(d *Deposit) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deposit: %w", err)
	}
	data, err := peanutABI.Pack(MethodMakeDeposit,
		d.TokenAddress,
		uint8(d.ContractType),
		d.amount(),
		d.tokenId(),
		d.PubKey20,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", MethodMakeDeposit)
	}
	return data, nil
}

// UnpackMakeDeposit decodes makeDeposit calldata.
func UnpackMakeDeposit(calldata []byte) (*Deposit, error) {
	args, err := unpackInputs(MethodMakeDeposit, calldata)
	if err != nil {
		return nil, err
	}
	tokenAddress, ok0 := args[0].(common.Address)
	contractType, ok1 := args[1].(uint8)
	amount, ok2 := args[2].(*big.Int)
	tokenId, ok3 := args[3].(*big.Int)
	pubKey20, ok4 := args[4].(common.Address)
	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("unexpected %s argument types", MethodMakeDeposit)
	}
	return &Deposit{
		PubKey20:     pubKey20,
		Amount:       amount,
		TokenAddress: tokenAddress,
		ContractType: ContractType(contractType),
		TokenId:      tokenId,
	}, nil
}

// PackWithdrawDeposit encodes the withdrawDeposit calldata for c.
func PackWithdrawDeposit(c *claim.Claim) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid claim: %w", err)
	}
	data, err := peanutABI.Pack(MethodWithdrawDeposit,
		new(big.Int).SetUint64(c.DepositIndex),
		c.Recipient,
		[32]byte(c.RecipientHash),
		[]byte(c.Signature),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", MethodWithdrawDeposit)
	}
	return data, nil
}

// UnpackWithdrawDeposit decodes withdrawDeposit calldata back into a claim. The
// claim is structurally validated but its signer is not checked.
func UnpackWithdrawDeposit(calldata []byte) (*claim.Claim, error) {
	args, err := unpackInputs(MethodWithdrawDeposit, calldata)
	if err != nil {
		return nil, err
	}
	index, ok0 := args[0].(*big.Int)
	recipient, ok1 := args[1].(common.Address)
	hash, ok2 := args[2].([32]byte)
	sig, ok3 := args[3].([]byte)
	if !ok0 || !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("unexpected %s argument types", MethodWithdrawDeposit)
	}
	if !index.IsUint64() {
		return nil, fmt.Errorf("deposit index %s overflows uint64", index)
	}

	c := &claim.Claim{
		DepositIndex:  index.Uint64(),
		Recipient:     recipient,
		RecipientHash: common.Hash(hash),
		Signature:     sig,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid claim in calldata: %w", err)
	}
	return c, nil
}

func unpackInputs(name string, calldata []byte) ([]interface{}, error) {
	method := peanutABI.Methods[name]
	if len(calldata) < 4 {
		return nil, fmt.Errorf("calldata too short: %d bytes", len(calldata))
	}
	if !bytes.Equal(calldata[:4], method.ID) {
		return nil, fmt.Errorf("calldata selector %x is not %s", calldata[:4], method.Sig)
	}
	args, err := method.Inputs.Unpack(calldata[4:])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unpack %s", name)
	}
	if len(args) != len(method.Inputs) {
		return nil, fmt.Errorf("expected %d %s arguments, got %d", len(method.Inputs), name, len(args))
	}
	return args, nil
}
