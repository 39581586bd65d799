package contracts

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testLinkAddress  = common.HexToAddress("0x09332B1E45e6172fB26E46B3DB4411201547560a")
	testTokenAddress = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
)

func Test_ContractType(t *testing.T) {
	for _, ct := range []ContractType{ContractTypeETH, ContractTypeERC20, ContractTypeERC721, ContractTypeERC1155} {
		parsed, err := ParseContractType(ct.String())
		require.NoError(t, err)
		assert.Equal(t, ct, parsed)
		assert.True(t, ct.IsValid())
	}

	parsed, err := ParseContractType(" ERC721 ")
	require.NoError(t, err)
	assert.Equal(t, ContractTypeERC721, parsed)

	parsed, err = ParseContractType("3")
	require.NoError(t, err)
	assert.Equal(t, ContractTypeERC1155, parsed)

	_, err = ParseContractType("erc4626")
	assert.True(t, errors.Is(err, ErrUnknownContractType))

	assert.False(t, ContractType(4).IsValid())
	assert.Equal(t, "unknown(4)", ContractType(4).String())
}

func Test_DepositValidate(t *testing.T) {
	tests := []struct {
		name    string
		deposit Deposit
		wantErr bool
	}{
		{"eth", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(1e18)}, false},
		{"eth with token", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(1), TokenAddress: testTokenAddress}, true},
		{"eth without amount", Deposit{PubKey20: testLinkAddress}, true},
		{"erc20", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(10), TokenAddress: testTokenAddress, ContractType: ContractTypeERC20}, false},
		{"erc20 zero amount", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(0), TokenAddress: testTokenAddress, ContractType: ContractTypeERC20}, true},
		{"erc20 without token", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(10), ContractType: ContractTypeERC20}, true},
		{"erc721", Deposit{PubKey20: testLinkAddress, TokenAddress: testTokenAddress, ContractType: ContractTypeERC721, TokenId: big.NewInt(5)}, false},
		{"erc721 amount one", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(1), TokenAddress: testTokenAddress, ContractType: ContractTypeERC721}, false},
		{"erc721 amount two", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(2), TokenAddress: testTokenAddress, ContractType: ContractTypeERC721}, true},
		{"erc1155", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(100), TokenAddress: testTokenAddress, ContractType: ContractTypeERC1155}, false},
		{"erc1155 zero amount", Deposit{PubKey20: testLinkAddress, TokenAddress: testTokenAddress, ContractType: ContractTypeERC1155}, true},
		{"negative amount", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(-1), TokenAddress: testTokenAddress, ContractType: ContractTypeERC20}, true},
		{"no link key", Deposit{Amount: big.NewInt(1)}, true},
		{"bad type", Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(1), ContractType: 9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.deposit.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_DepositTxValue(t *testing.T) {
	eth := &Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(330)}
	assert.Equal(t, big.NewInt(330), eth.TxValue())

	erc20 := &Deposit{PubKey20: testLinkAddress, Amount: big.NewInt(10), TokenAddress: testTokenAddress, ContractType: ContractTypeERC20}
	assert.Equal(t, 0, erc20.TxValue().Sign())
}
