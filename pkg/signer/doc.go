// Package signer issues and checks the withdrawal signatures produced with a
// Peanut link key.
//
// Signing always goes through the wallet signed-message construction
// (binding.PrefixedDigest) unless the caller hands over a pre-built
// binding.Digest. Key material is passed explicitly on every call; nothing in
// this package holds keys or other state.
//
// Usage
//
//	kp, err := keys.DeriveKeyPairFromSecret(password)
//	if err != nil {
//	    return err
//	}
//	sig, err := signer.Sign([]byte("I love Peanuts!"), kp)
//	if err != nil {
//	    return err
//	}
//	ok := signer.Verify([]byte("I love Peanuts!"), sig, kp.Address())
//
// Verification never errors: a malformed signature is simply invalid.
package signer
