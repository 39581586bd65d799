package binding

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func FuzzPrefixedDigest(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("I love Peanuts!"))
	f.Add(make([]byte, 32))

	f.Fuzz(func(t *testing.T, payload []byte) {
		d := PrefixedDigest(payload)
		require.Equal(t, ModePrefixed, d.Mode)
		require.Equal(t, accounts.TextHash(payload), d.Bytes())
	})
}

func FuzzWithdrawalDigest(f *testing.F) {
	f.Add(make([]byte, common.AddressLength))
	f.Add(common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4").Bytes())

	f.Fuzz(func(t *testing.T, raw []byte) {
		addr := common.BytesToAddress(raw)

		inner := UnprefixedAddressDigest(addr)
		require.Equal(t, crypto.Keccak256(addr.Bytes()), inner.Bytes())

		outer := WithdrawalDigest(addr)
		require.Equal(t, accounts.TextHash(inner.Bytes()), outer.Bytes())
	})
}
