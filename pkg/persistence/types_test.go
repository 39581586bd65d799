package persistence_test

import (
	"strings"
	"testing"

	"github.com/peanutprotocol/peanut-go/pkg/persistence"
	"github.com/peanutprotocol/peanut-go/pkg/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClaimKey_Normalize(t *testing.T) {
	canonical := strings.ToLower(testutil.TestContract)

	for _, spelling := range []string{
		testutil.TestContract,
		canonical,
		strings.TrimPrefix(canonical, "0x"),
		strings.ToUpper(strings.TrimPrefix(canonical, "0x")),
		"0X" + strings.TrimPrefix(canonical, "0x"),
	} {
		key := persistence.ClaimKey{ChainId: 1, ContractAddress: spelling, DepositIndex: 3}.Normalize()
		assert.Equal(t, canonical, key.ContractAddress, spelling)
		assert.Equal(t, "1:"+canonical+":00000000000000000003", key.String(), spelling)
	}
}
