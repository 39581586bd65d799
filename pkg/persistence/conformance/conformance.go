// Package conformance holds the behavioural test suite shared by every
// IClaimPersistence backend.
package conformance

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/peanutprotocol/peanut-go/pkg/persistence"
	"github.com/peanutprotocol/peanut-go/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend. The suite closes it.
type Factory func(t *testing.T) persistence.IClaimPersistence

// RunClaimPersistenceSuite exercises the IClaimPersistence contract.
func RunClaimPersistenceSuite(t *testing.T, newStore Factory) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := testutil.CreateTestClaimRecord(t, 11155111, 1)
		require.NoError(t, store.SaveClaim(record))

		loaded, err := store.LoadClaim(record.Key())
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, record, loaded)

		c, err := loaded.Claim()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), c.DepositIndex)
	})

	t.Run("LoadIgnoresAddressCase", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := testutil.CreateTestClaimRecord(t, 1, 2)
		require.NoError(t, store.SaveClaim(record))

		key := record.Key()
		key.ContractAddress = strings.ToUpper(key.ContractAddress[2:])
		key.ContractAddress = "0x" + key.ContractAddress
		loaded, err := store.LoadClaim(key)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, record.Id, loaded.Id)
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadClaim(persistence.ClaimKey{ChainId: 1, ContractAddress: testutil.TestContract, DepositIndex: 999})
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("SaveNil", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		assert.Error(t, store.SaveClaim(nil))
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		first := testutil.CreateTestClaimRecord(t, 137, 5)
		require.NoError(t, store.SaveClaim(first))

		second := testutil.CreateTestClaimRecord(t, 137, 5)
		err := store.SaveClaim(second)
		require.Error(t, err)
		assert.True(t, errors.Is(err, persistence.ErrClaimExists))

		loaded, err := store.LoadClaim(first.Key())
		require.NoError(t, err)
		assert.Equal(t, first.Id, loaded.Id)

		// same index on another chain is a different deposit
		require.NoError(t, store.SaveClaim(testutil.CreateTestClaimRecord(t, 10, 5)))
	})

	t.Run("DuplicateRejectedAcrossAddressSpellings", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		first := testutil.CreateTestClaimRecord(t, 1, 6)
		require.NoError(t, store.SaveClaim(first))

		for _, spelling := range []string{
			strings.TrimPrefix(first.ContractAddress, "0x"),
			"0x" + strings.ToUpper(first.ContractAddress[2:]),
			strings.ToUpper(first.ContractAddress[2:]),
		} {
			again := testutil.CreateTestClaimRecord(t, 1, 6)
			again.ContractAddress = spelling
			err := store.SaveClaim(again)
			require.Error(t, err, spelling)
			assert.True(t, errors.Is(err, persistence.ErrClaimExists), spelling)
		}

		loaded, err := store.LoadClaim(persistence.ClaimKey{
			ChainId:         1,
			ContractAddress: strings.TrimPrefix(first.ContractAddress, "0x"),
			DepositIndex:    6,
		})
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, first.Id, loaded.Id)

		records, err := store.ListClaims()
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("ListSorted", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		empty, err := store.ListClaims()
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, idx := range []uint64{10, 2, 1} {
			require.NoError(t, store.SaveClaim(testutil.CreateTestClaimRecord(t, 137, idx)))
		}
		require.NoError(t, store.SaveClaim(testutil.CreateTestClaimRecord(t, 1, 50)))

		records, err := store.ListClaims()
		require.NoError(t, err)
		require.Len(t, records, 4)

		assert.Equal(t, uint64(1), records[0].ChainId)
		assert.Equal(t, []uint64{50, 1, 2, 10}, []uint64{
			records[0].DepositIndex, records[1].DepositIndex, records[2].DepositIndex, records[3].DepositIndex,
		})
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := testutil.CreateTestClaimRecord(t, 1, 3)
		require.NoError(t, store.SaveClaim(record))

		require.NoError(t, store.DeleteClaim(record.Key()))
		require.NoError(t, store.DeleteClaim(record.Key()))

		loaded, err := store.LoadClaim(record.Key())
		require.NoError(t, err)
		assert.Nil(t, loaded)

		records, err := store.ListClaims()
		require.NoError(t, err)
		assert.Empty(t, records)

		// deleted deposits can be stored again
		require.NoError(t, store.SaveClaim(record))
	})

	t.Run("ConcurrentSaves", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		records := testutil.CreateTestClaimRecords(t, 42161, 20)

		var wg sync.WaitGroup
		errs := make(chan error, len(records)*2)
		for _, r := range records {
			// two writers race for every deposit, exactly one wins
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(r *persistence.ClaimRecord) {
					defer wg.Done()
					errs <- store.SaveClaim(r)
				}(r)
			}
		}
		wg.Wait()
		close(errs)

		var saved, rejected int
		for err := range errs {
			switch {
			case err == nil:
				saved++
			case errors.Is(err, persistence.ErrClaimExists):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, len(records), saved)
		assert.Equal(t, len(records), rejected)

		listed, err := store.ListClaims()
		require.NoError(t, err)
		assert.Len(t, listed, len(records))
	})

	t.Run("Closed", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.HealthCheck())

		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		record := testutil.CreateTestClaimRecord(t, 1, 1)
		assert.ErrorIs(t, store.SaveClaim(record), persistence.ErrClosed)
		_, err := store.LoadClaim(record.Key())
		assert.ErrorIs(t, err, persistence.ErrClosed)
		_, err = store.ListClaims()
		assert.ErrorIs(t, err, persistence.ErrClosed)
		assert.ErrorIs(t, store.DeleteClaim(record.Key()), persistence.ErrClosed)
		assert.ErrorIs(t, store.HealthCheck(), persistence.ErrClosed)
	})
}
