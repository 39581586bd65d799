package keys

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	helloWorldPrivateKey = "0xb94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	helloWorldPublicKey  = "0x04e9858b6e48eb93d8f27aa76b60806298c4c7dd94077ad6c3ff97c4493788864732ff1c16baa232bec850796500cd6da13554e37b613a4d642fd56e59b9d1feed"
	helloWorldAddress    = "0x09332B1E45e6172fB26E46B3DB4411201547560a"

	// secp256k1 group order
	curveOrderHex = "0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) { return 0, errors.New("entropy pool drained") }

func Test_GenerateRandomKeyPair(t *testing.T) {
	t.Run("Should produce a consistent triple", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			kp, err := GenerateRandomKeyPair()
			require.NoError(t, err)
			require.NoError(t, kp.Validate())

			assert.Equal(t, kp.Address(), DeriveAddress(kp.PublicKey()))
			assert.Equal(t, kp.PublicKeyBytes(), crypto.FromECDSAPub(DerivePublicKey(kp.PrivateKey())))
			assert.Len(t, kp.PrivateKeyBytes(), PrivateKeyLength)
			assert.Len(t, kp.PublicKeyBytes(), PublicKeyLength)
			assert.Equal(t, byte(0x04), kp.PublicKeyBytes()[0])
		}
	})

	t.Run("Should generate distinct key pairs", func(t *testing.T) {
		seen := make(map[common.Address]bool)
		for i := 0; i < 20; i++ {
			kp, err := GenerateRandomKeyPair()
			require.NoError(t, err)
			assert.False(t, seen[kp.Address()], "duplicate address generated")
			seen[kp.Address()] = true
		}
	})

	t.Run("Should use exactly the bytes read from the source", func(t *testing.T) {
		raw, err := hexutil.Decode(helloWorldPrivateKey)
		require.NoError(t, err)

		kp, err := GenerateRandomKeyPairFromReader(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, helloWorldAddress, kp.Address().Hex())
	})

	t.Run("Should fail on a short read", func(t *testing.T) {
		kp, err := GenerateRandomKeyPairFromReader(bytes.NewReader(make([]byte, 16)))
		require.Error(t, err)
		assert.Nil(t, kp)
		assert.True(t, errors.Is(err, ErrRandomSource))
	})

	t.Run("Should fail when the source errors", func(t *testing.T) {
		kp, err := GenerateRandomKeyPairFromReader(failingReader{})
		require.Error(t, err)
		assert.Nil(t, kp)
		assert.True(t, errors.Is(err, ErrRandomSource))
	})

	t.Run("Should fail on a nil source", func(t *testing.T) {
		_, err := GenerateRandomKeyPairFromReader(nil)
		assert.True(t, errors.Is(err, ErrRandomSource))
	})

	t.Run("Should reject an out of range draw", func(t *testing.T) {
		order, err := hexutil.Decode(curveOrderHex)
		require.NoError(t, err)

		_, err = GenerateRandomKeyPairFromReader(bytes.NewReader(order))
		assert.True(t, errors.Is(err, ErrScalarOutOfRange))

		_, err = GenerateRandomKeyPairFromReader(bytes.NewReader(make([]byte, 32)))
		assert.True(t, errors.Is(err, ErrScalarOutOfRange))
	})
}

func Test_DeriveKeyPairFromSecret(t *testing.T) {
	t.Run("Should derive the pinned hello world vector", func(t *testing.T) {
		kp, err := DeriveKeyPairFromSecret("hello world")
		require.NoError(t, err)

		assert.Equal(t, helloWorldPrivateKey, kp.PrivateKeyHex())
		assert.Equal(t, helloWorldPublicKey, kp.PublicKeyHex())
		assert.Equal(t, helloWorldAddress, kp.Address().Hex())
	})

	t.Run("Should use SHA-256 of the secret as the private key", func(t *testing.T) {
		secret := "if you read this, send a h3y"
		kp, err := DeriveKeyPairFromSecret(secret)
		require.NoError(t, err)

		digest := sha256.Sum256([]byte(secret))
		assert.Equal(t, digest[:], kp.PrivateKeyBytes())
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		for _, secret := range []string{"", "a", "hello world", "🥜🥜🥜", string(make([]byte, 1024))} {
			kp1, err := DeriveKeyPairFromSecret(secret)
			require.NoError(t, err)
			kp2, err := DeriveKeyPairFromSecret(secret)
			require.NoError(t, err)
			assert.True(t, kp1.Equal(kp2), "secret %q", secret)
		}
	})

	t.Run("Should separate different secrets", func(t *testing.T) {
		kp1, err := DeriveKeyPairFromSecret("hello world")
		require.NoError(t, err)
		kp2, err := DeriveKeyPairFromSecret("hello world!")
		require.NoError(t, err)

		assert.False(t, kp1.Equal(kp2))
		assert.NotEqual(t, kp1.Address(), kp2.Address())
	})
}

func Test_LoadKeyPair(t *testing.T) {
	t.Run("Should load from hex with and without prefix", func(t *testing.T) {
		withPrefix, err := NewKeyPairFromHex(helloWorldPrivateKey)
		require.NoError(t, err)
		withoutPrefix, err := NewKeyPairFromHex(helloWorldPrivateKey[2:])
		require.NoError(t, err)

		assert.True(t, withPrefix.Equal(withoutPrefix))
		assert.Equal(t, helloWorldAddress, withPrefix.Address().Hex())
	})

	t.Run("Should load from an ecdsa key", func(t *testing.T) {
		priv, err := crypto.HexToECDSA(helloWorldPrivateKey[2:])
		require.NoError(t, err)

		kp, err := NewKeyPairFromECDSA(priv)
		require.NoError(t, err)
		assert.Equal(t, helloWorldAddress, kp.Address().Hex())
	})

	t.Run("Should reject bad lengths", func(t *testing.T) {
		_, err := NewKeyPairFromPrivateKey(make([]byte, 31))
		assert.True(t, errors.Is(err, ErrInvalidKeyLength))

		_, err = NewKeyPairFromHex("0x1234")
		assert.True(t, errors.Is(err, ErrInvalidKeyLength))
	})

	t.Run("Should reject malformed hex", func(t *testing.T) {
		_, err := NewKeyPairFromHex("0xnothex")
		assert.Error(t, err)
	})

	t.Run("Should reject the curve order", func(t *testing.T) {
		_, err := NewKeyPairFromHex(curveOrderHex)
		assert.True(t, errors.Is(err, ErrScalarOutOfRange))
	})

	t.Run("Should reject nil ecdsa keys", func(t *testing.T) {
		_, err := NewKeyPairFromECDSA(nil)
		assert.Error(t, err)
	})
}

func Test_KeyPairImmutability(t *testing.T) {
	kp, err := DeriveKeyPairFromSecret("hello world")
	require.NoError(t, err)

	priv := kp.PrivateKeyBytes()
	priv[0] ^= 0xff
	pub := kp.PublicKeyBytes()
	pub[1] ^= 0xff
	ecdsaKey := kp.PrivateKey()
	ecdsaKey.D.SetInt64(1)

	assert.Equal(t, helloWorldPrivateKey, kp.PrivateKeyHex())
	assert.Equal(t, helloWorldPublicKey, kp.PublicKeyHex())
	require.NoError(t, kp.Validate())
}

func Test_KeyPairExport(t *testing.T) {
	kp, err := DeriveKeyPairFromSecret("hello world")
	require.NoError(t, err)

	exported := kp.Export()
	assert.Equal(t, helloWorldAddress, exported.Address)
	assert.Equal(t, helloWorldPrivateKey, exported.PrivateKey)
	assert.Equal(t, helloWorldPublicKey, exported.PublicKey)

	assert.Equal(t, helloWorldAddress, kp.String())
	assert.NotContains(t, kp.String(), helloWorldPrivateKey[2:])
}
