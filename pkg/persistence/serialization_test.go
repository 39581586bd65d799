package persistence_test

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/peanutprotocol/peanut-go/pkg/persistence"
	"github.com/peanutprotocol/peanut-go/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalClaimRecord_RoundTrip(t *testing.T) {
	original := testutil.CreateTestClaimRecord(t, 11155111, 4)

	data, err := persistence.MarshalClaimRecord(original)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	restored, err := persistence.UnmarshalClaimRecord(data)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestMarshalClaimRecord_NilInput(t *testing.T) {
	_, err := persistence.MarshalClaimRecord(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil ClaimRecord")
}

func TestUnmarshalClaimRecord_InvalidJSON(t *testing.T) {
	_, err := persistence.UnmarshalClaimRecord([]byte(`{"depositIndex": "not a number"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestUnmarshalClaimRecord_EmptyData(t *testing.T) {
	_, err := persistence.UnmarshalClaimRecord([]byte{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty data")
}

func TestClaimRecord_Claim(t *testing.T) {
	record := testutil.CreateTestClaimRecord(t, 1, 9)

	c, err := record.Claim()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), c.DepositIndex)
	assert.Equal(t, testutil.TestRecipient, c.Recipient.Hex())
	assert.True(t, c.Verify(common.HexToAddress(record.Signer)))

	record.Signature = "0x1234"
	_, err = record.Claim()
	assert.Error(t, err)
}

func TestClaimKey(t *testing.T) {
	contract := common.HexToAddress(testutil.TestContract)
	key := persistence.NewClaimKey(137, contract, 5)
	assert.Equal(t, strings.ToLower(testutil.TestContract), key.ContractAddress)
	assert.Equal(t, "137:"+strings.ToLower(testutil.TestContract)+":00000000000000000005", key.String())

	assert.True(t, persistence.NewClaimKey(1, contract, 100).Less(persistence.NewClaimKey(137, contract, 0)))
	assert.True(t, persistence.NewClaimKey(1, contract, 2).Less(persistence.NewClaimKey(1, contract, 10)))
	assert.False(t, key.Less(key))

	record := testutil.CreateTestClaimRecord(t, 137, 5)
	assert.Equal(t, key, record.Key())
	assert.NoError(t, record.Validate())

	record.ContractAddress = "nope"
	assert.Error(t, record.Validate())
}
