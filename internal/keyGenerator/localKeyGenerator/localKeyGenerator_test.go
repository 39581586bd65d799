package localKeyGenerator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/peanutprotocol/peanut-go/pkg/logger"
	"github.com/peanutprotocol/peanut-go/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const capturedSignature = "0xcffbbbc4a538238a7945baffad39d6950fd424a52144bb9beb680ebbc85d7f026274d8449192b49a635d63f2fa886fa0c61f9b9aa920cbd228afb8a34c7cb9711b"

func setup() (*LocalKeyGenerator, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{
		Debug: true,
	})
	if err != nil {
		return nil, err
	}

	generator := NewLocalKeyGenerator(l)
	return generator, nil
}

func Test_LocalKeyGenerator(t *testing.T) {
	generator, err := setup()
	if err != nil {
		t.Fatalf("Failed to setup test: %v", err)
	}
	ctx := context.Background()

	t.Run("Should generate a link key", func(t *testing.T) {
		result, err := generator.GenerateLinkKey(ctx, "deposit-1")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.True(t, strings.HasPrefix(result.KeyId, "local-key-"))
		assert.NotEqual(t, common.Address{}, result.Address)
		assert.Equal(t, "deposit-1", result.Label)

		pubHex, err := result.GetPublicKeyHex()
		require.NoError(t, err)
		assert.Len(t, pubHex, 2+65*2)

		unprefixed, err := result.GetPublicKeyBytesUnprefixed()
		require.NoError(t, err)
		assert.Len(t, unprefixed, 64)
	})

	t.Run("Should generate unique keys", func(t *testing.T) {
		keyIds := make(map[string]bool)
		addresses := make(map[common.Address]bool)
		for i := 0; i < 5; i++ {
			result, err := generator.GenerateLinkKey(ctx, "batch")
			require.NoError(t, err)
			keyIds[result.KeyId] = true
			addresses[result.Address] = true
		}
		assert.Len(t, keyIds, 5)
		assert.Len(t, addresses, 5)
	})

	t.Run("Should derive the same address from the same secret", func(t *testing.T) {
		first, err := generator.DeriveLinkKey(ctx, "a", testutil.HelloWorldSecret)
		require.NoError(t, err)
		second, err := generator.DeriveLinkKey(ctx, "b", testutil.HelloWorldSecret)
		require.NoError(t, err)

		assert.NotEqual(t, first.KeyId, second.KeyId)
		assert.Equal(t, testutil.HelloWorldAddress, first.Address.Hex())
		assert.Equal(t, first.Address, second.Address)
	})

	t.Run("Should retrieve keys by id", func(t *testing.T) {
		generated, err := generator.GenerateLinkKey(ctx, "lookup")
		require.NoError(t, err)

		retrieved, err := generator.GetLinkKeyById(ctx, generated.KeyId)
		require.NoError(t, err)
		assert.Equal(t, generated, retrieved)

		_, err = generator.GetLinkKeyById(ctx, "missing")
		assert.Error(t, err)
	})

	t.Run("Should sign withdrawals", func(t *testing.T) {
		generated, err := generator.DeriveLinkKey(ctx, "hello", testutil.HelloWorldSecret)
		require.NoError(t, err)

		c, err := generator.SignWithdrawal(ctx, generated.KeyId, 0, common.HexToAddress(testutil.TestRecipient))
		require.NoError(t, err)
		assert.Equal(t, capturedSignature, c.Signature.String())
		assert.True(t, c.Verify(generated.Address))

		_, err = generator.SignWithdrawal(ctx, "missing", 0, common.HexToAddress(testutil.TestRecipient))
		assert.Error(t, err)

		_, err = generator.SignWithdrawal(ctx, generated.KeyId, 0, common.Address{})
		assert.Error(t, err)
	})

	t.Run("Should export key material", func(t *testing.T) {
		generated, err := generator.DeriveLinkKey(ctx, "export", testutil.HelloWorldSecret)
		require.NoError(t, err)

		exported, err := generator.Export(generated.KeyId)
		require.NoError(t, err)
		assert.Equal(t, "0xb94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", exported.PrivateKey)
		assert.Equal(t, generated.Address.Hex(), exported.Address)

		_, err = generator.Export("missing")
		assert.Error(t, err)
	})
}

func Test_LocalKeyGenerator_Helpers(t *testing.T) {
	generator, err := setup()
	require.NoError(t, err)

	require.NoError(t, generator.LoadPrivateKeyFromHex("fixed", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", "fixture"))
	assert.True(t, generator.KeyExists("fixed"))
	assert.Equal(t, 1, generator.GetKeyCount())

	// duplicate ids are rejected
	assert.Error(t, generator.LoadPrivateKeyFromHex("fixed", "0xb94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", "fixture"))
	assert.Error(t, generator.LoadPrivateKeyFromHex("bad", "0x1234", "fixture"))
	// the curve order itself is not a valid key
	assert.Error(t, generator.LoadPrivateKeyFromHex("order", "0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", "fixture"))

	byLabel := generator.GetKeyByLabel("fixture")
	require.NotNil(t, byLabel)
	assert.Equal(t, testutil.HelloWorldAddress, byLabel.Address.Hex())
	assert.Nil(t, generator.GetKeyByLabel("unknown"))

	generator.ClearKeys()
	assert.Equal(t, 0, generator.GetKeyCount())
	assert.False(t, generator.KeyExists("fixed"))
}

func Test_LocalKeyGenerator_GetKeyByLabelOrder(t *testing.T) {
	generator, err := setup()
	require.NoError(t, err)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 20; i++ {
		key, err := generator.GenerateLinkKey(ctx, "shared")
		require.NoError(t, err)
		ids = append(ids, key.KeyId)
	}

	// repeated lookups always return the earliest stored key
	for i := 0; i < 10; i++ {
		byLabel := generator.GetKeyByLabel("shared")
		require.NotNil(t, byLabel)
		assert.Equal(t, ids[0], byLabel.KeyId)
	}

	generator.ClearKeys()
	assert.Nil(t, generator.GetKeyByLabel("shared"))

	key, err := generator.GenerateLinkKey(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, key.KeyId, generator.GetKeyByLabel("shared").KeyId)
}

func Test_LocalKeyGenerator_Concurrent(t *testing.T) {
	generator, err := setup()
	require.NoError(t, err)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, err := generator.GenerateLinkKey(ctx, fmt.Sprintf("worker-%d", i))
			if err != nil {
				errs <- err
				return
			}
			c, err := generator.SignWithdrawal(ctx, key.KeyId, uint64(i), common.HexToAddress(testutil.TestRecipient))
			if err != nil {
				errs <- err
				return
			}
			if !c.Verify(key.Address) {
				errs <- fmt.Errorf("worker %d produced an invalid claim", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, workers, generator.GetKeyCount())
}
