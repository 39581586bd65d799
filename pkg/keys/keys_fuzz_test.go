package keys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzDeriveKeyPairFromSecret(f *testing.F) {
	f.Add("")
	f.Add("hello world")
	f.Add("こんにちは")

	f.Fuzz(func(t *testing.T, secret string) {
		kp1, err := DeriveKeyPairFromSecret(secret)
		if errors.Is(err, ErrScalarOutOfRange) {
			return
		}
		require.NoError(t, err)
		require.NoError(t, kp1.Validate())

		kp2, err := DeriveKeyPairFromSecret(secret)
		require.NoError(t, err)
		require.True(t, kp1.Equal(kp2))
	})
}

func FuzzNewKeyPairFromPrivateKey(f *testing.F) {
	f.Add(make([]byte, 32))
	f.Add([]byte("0123456789abcdef0123456789abcdef"))

	f.Fuzz(func(t *testing.T, raw []byte) {
		kp, err := NewKeyPairFromPrivateKey(raw)
		if len(raw) != PrivateKeyLength {
			require.ErrorIs(t, err, ErrInvalidKeyLength)
			return
		}
		if err != nil {
			require.ErrorIs(t, err, ErrScalarOutOfRange)
			return
		}
		require.Equal(t, raw, kp.PrivateKeyBytes())
		require.Equal(t, kp.Address(), DeriveAddress(kp.PublicKey()))
	})
}
