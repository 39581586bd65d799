package claim

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/peanutprotocol/peanut-go/pkg/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRecipient = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"
	// captured from the Peanut SDK for the "hello world" link key
	capturedSignature = "0xcffbbbc4a538238a7945baffad39d6950fd424a52144bb9beb680ebbc85d7f026274d8449192b49a635d63f2fa886fa0c61f9b9aa920cbd228afb8a34c7cb9711b"
	recipientHash     = "0xcd9ed0433174d173b609ed57aa4b81fb9b9dc8b800fb0b7743d1d703bacf1b24"
)

func Test_NewWithdrawalClaim(t *testing.T) {
	kp, err := keys.DeriveKeyPairFromSecret("hello world")
	require.NoError(t, err)
	recipient := common.HexToAddress(testRecipient)

	t.Run("Should reproduce the captured signature", func(t *testing.T) {
		c, err := NewWithdrawalClaim(7, recipient, kp)
		require.NoError(t, err)

		assert.Equal(t, uint64(7), c.DepositIndex)
		assert.Equal(t, recipient, c.Recipient)
		assert.Equal(t, recipientHash, c.RecipientHash.Hex())
		assert.Equal(t, capturedSignature, c.Signature.String())
	})

	t.Run("Should verify against the deposit address", func(t *testing.T) {
		c, err := NewWithdrawalClaim(0, recipient, kp)
		require.NoError(t, err)

		assert.NoError(t, c.Validate())
		assert.True(t, c.Verify(kp.Address()))

		signerAddr, err := c.Signer()
		require.NoError(t, err)
		assert.Equal(t, kp.Address(), signerAddr)
	})

	t.Run("Should not depend on the deposit index", func(t *testing.T) {
		c1, err := NewWithdrawalClaim(1, recipient, kp)
		require.NoError(t, err)
		c2, err := NewWithdrawalClaim(2, recipient, kp)
		require.NoError(t, err)
		assert.Equal(t, c1.Signature, c2.Signature)
	})

	t.Run("Should reject bad inputs", func(t *testing.T) {
		_, err := NewWithdrawalClaim(0, recipient, nil)
		assert.Error(t, err)

		_, err = NewWithdrawalClaim(0, common.Address{}, kp)
		assert.Error(t, err)
	})
}

func Test_ClaimVerify(t *testing.T) {
	kp, err := keys.DeriveKeyPairFromSecret("hello world")
	require.NoError(t, err)
	other, err := keys.GenerateRandomKeyPair()
	require.NoError(t, err)
	recipient := common.HexToAddress(testRecipient)

	fresh := func() *Claim {
		c, err := NewWithdrawalClaim(3, recipient, kp)
		require.NoError(t, err)
		return c
	}

	t.Run("Wrong signer", func(t *testing.T) {
		assert.False(t, fresh().Verify(other.Address()))
	})

	t.Run("Redirected recipient", func(t *testing.T) {
		c := fresh()
		c.Recipient = other.Address()
		assert.False(t, c.Verify(kp.Address()))
		assert.Error(t, c.Validate())
	})

	t.Run("Redirected recipient with matching hash", func(t *testing.T) {
		redirected, err := NewWithdrawalClaim(3, other.Address(), other)
		require.NoError(t, err)

		c := fresh()
		c.Recipient = redirected.Recipient
		c.RecipientHash = redirected.RecipientHash
		require.NoError(t, c.Validate())
		assert.False(t, c.Verify(kp.Address()))
	})

	t.Run("Truncated signature", func(t *testing.T) {
		c := fresh()
		c.Signature = c.Signature[:64]
		assert.False(t, c.Verify(kp.Address()))
		_, err := c.Signer()
		assert.Error(t, err)
	})

	t.Run("Nil claim", func(t *testing.T) {
		var c *Claim
		assert.False(t, c.Verify(kp.Address()))
	})
}

func Test_ClaimJSON(t *testing.T) {
	kp, err := keys.DeriveKeyPairFromSecret("hello world")
	require.NoError(t, err)
	c, err := NewWithdrawalClaim(42, common.HexToAddress(testRecipient), kp)
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), capturedSignature)

	var decoded Claim
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, c, &decoded)
	assert.True(t, decoded.Verify(kp.Address()))
}
