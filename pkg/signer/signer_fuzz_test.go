package signer

import (
	"testing"

	"github.com/peanutprotocol/peanut-go/pkg/keys"
)

func FuzzSignVerify(f *testing.F) {
	f.Add("hello world", []byte("I love Peanuts!"))
	f.Add("", []byte{})
	f.Add("secret", []byte{0x00, 0xff})

	f.Fuzz(func(t *testing.T, secret string, payload []byte) {
		kp, err := keys.DeriveKeyPairFromSecret(secret)
		if err != nil {
			t.Skip()
		}
		sig, err := Sign(payload, kp)
		if err != nil {
			t.Fatalf("sign failed: %v", err)
		}
		if !Verify(payload, sig, kp.Address()) {
			t.Fatalf("signature by %s did not verify", kp.Address())
		}
	})
}

func FuzzRecoverAddress(f *testing.F) {
	f.Add([]byte("I love Peanuts!"), make([]byte, SignatureLength))
	f.Add([]byte{}, []byte{0x1b})

	f.Fuzz(func(t *testing.T, payload []byte, sig []byte) {
		// must never panic on attacker controlled input
		_, _ = RecoverAddress(payload, sig)
	})
}
