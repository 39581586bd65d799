package testutil

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/peanutprotocol/peanut-go/pkg/claim"
	"github.com/peanutprotocol/peanut-go/pkg/keys"
	"github.com/peanutprotocol/peanut-go/pkg/persistence"
)

const (
	// HelloWorldSecret derives the link key used throughout the contract test suites.
	HelloWorldSecret  = "hello world"
	HelloWorldAddress = "0x09332B1E45e6172fB26E46B3DB4411201547560a"
	TestRecipient     = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"
	TestContract      = "0x891021b34fEDC18E36C015BFFAA64a2421738906"
)

// CreateTestKeyPair returns the link key derived from HelloWorldSecret
func CreateTestKeyPair(t *testing.T) *keys.KeyPair {
	t.Helper()
	kp, err := keys.DeriveKeyPairFromSecret(HelloWorldSecret)
	if err != nil {
		t.Fatalf("Failed to derive test key pair: %v", err)
	}
	return kp
}

// CreateTestClaim signs a withdrawal of deposit index to TestRecipient
func CreateTestClaim(t *testing.T, index uint64) (*claim.Claim, *keys.KeyPair) {
	t.Helper()
	kp := CreateTestKeyPair(t)
	c, err := claim.NewWithdrawalClaim(index, common.HexToAddress(TestRecipient), kp)
	if err != nil {
		t.Fatalf("Failed to create test claim: %v", err)
	}
	return c, kp
}

// CreateTestClaimRecord creates a stored record for deposit index on TestContract
func CreateTestClaimRecord(t *testing.T, chainId uint64, index uint64) *persistence.ClaimRecord {
	t.Helper()
	c, kp := CreateTestClaim(t, index)
	return persistence.NewClaimRecord(chainId, common.HexToAddress(TestContract), c, kp.Address())
}

// CreateTestClaimRecords creates n records with indices 0..n-1 on chainId
func CreateTestClaimRecords(t *testing.T, chainId uint64, n int) []*persistence.ClaimRecord {
	t.Helper()
	records := make([]*persistence.ClaimRecord, n)
	for i := 0; i < n; i++ {
		records[i] = CreateTestClaimRecord(t, chainId, uint64(i))
	}
	return records
}

// ContractAddress returns a deterministic contract address for fixture i
func ContractAddress(i int) common.Address {
	return common.HexToAddress(fmt.Sprintf("0x%040x", 0xc0ffee+i))
}
