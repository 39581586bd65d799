package localKeyGenerator

import (
	"context"
	"fmt"
	"sync"

	"github.com/Layr-Labs/crypto-libs/pkg/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/peanutprotocol/peanut-go/internal/keyGenerator"
	"github.com/peanutprotocol/peanut-go/pkg/claim"
	"github.com/peanutprotocol/peanut-go/pkg/keys"
	"go.uber.org/zap"
)

// keyEntry stores the key pair and its label
type keyEntry struct {
	keyPair *keys.KeyPair
	label   string
}

func (e *keyEntry) toGenerated(keyId string) *keyGenerator.GeneratedLinkKey {
	return &keyGenerator.GeneratedLinkKey{
		KeyId:     keyId,
		Label:     e.label,
		Address:   e.keyPair.Address(),
		PublicKey: e.keyPair.PublicKeyBytes(),
	}
}

// LocalKeyGenerator keeps link keys in process memory.
type LocalKeyGenerator struct {
	logger   *zap.Logger
	keyStore map[string]*keyEntry // keyId -> keyEntry
	order    []string             // keyIds in insertion order
	mu       sync.RWMutex
}

var _ keyGenerator.IKeyGenerator = (*LocalKeyGenerator)(nil)

func NewLocalKeyGenerator(logger *zap.Logger) *LocalKeyGenerator {
	return &LocalKeyGenerator{
		logger:   logger,
		keyStore: make(map[string]*keyEntry),
	}
}

func newKeyId() string {
	return fmt.Sprintf("local-key-%s", uuid.New().String())
}

// crossCheckAddress re-derives the address with an independent secp256k1
// implementation and rejects the key if the two disagree.
func crossCheckAddress(kp *keys.KeyPair) error {
	pk, err := ecdsa.NewPrivateKeyFromBytes(kp.PrivateKeyBytes())
	if err != nil {
		return fmt.Errorf("failed to load private key: %w", err)
	}
	address, err := pk.DeriveAddress()
	if err != nil {
		return fmt.Errorf("failed to derive Ethereum address from private key: %w", err)
	}
	if address != kp.Address() {
		return fmt.Errorf("%w: derived %s, expected %s", keys.ErrInconsistentKeyPair, address.Hex(), kp.Address().Hex())
	}
	return nil
}

func (l *LocalKeyGenerator) store(keyId string, kp *keys.KeyPair, label string) (*keyGenerator.GeneratedLinkKey, error) {
	if err := crossCheckAddress(kp); err != nil {
		return nil, err
	}

	entry := &keyEntry{keyPair: kp, label: label}

	l.mu.Lock()
	if _, exists := l.keyStore[keyId]; exists {
		l.mu.Unlock()
		return nil, fmt.Errorf("key with ID %s already exists", keyId)
	}
	l.keyStore[keyId] = entry
	l.order = append(l.order, keyId)
	l.mu.Unlock()

	l.logger.Info("Stored link key",
		zap.String("label", label),
		zap.String("keyId", keyId),
		zap.String("address", kp.Address().Hex()),
	)

	return entry.toGenerated(keyId), nil
}

func (l *LocalKeyGenerator) GenerateLinkKey(ctx context.Context, label string) (*keyGenerator.GeneratedLinkKey, error) {
	kp, err := keys.GenerateRandomKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate link key: %w", err)
	}
	return l.store(newKeyId(), kp, label)
}

// DeriveLinkKey stores the key derived from secret. The same secret always
// yields the same address, but each call gets a new key id.
func (l *LocalKeyGenerator) DeriveLinkKey(ctx context.Context, label string, secret string) (*keyGenerator.GeneratedLinkKey, error) {
	kp, err := keys.DeriveKeyPairFromSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive link key: %w", err)
	}
	return l.store(newKeyId(), kp, label)
}

func (l *LocalKeyGenerator) GetLinkKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedLinkKey, error) {
	l.mu.RLock()
	entry, exists := l.keyStore[keyId]
	l.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("key with ID %s not found", keyId)
	}

	l.logger.Debug("Retrieved link key by ID",
		zap.String("keyId", keyId),
		zap.String("address", entry.keyPair.Address().Hex()),
	)

	return entry.toGenerated(keyId), nil
}

func (l *LocalKeyGenerator) SignWithdrawal(ctx context.Context, keyId string, depositIndex uint64, recipient common.Address) (*claim.Claim, error) {
	l.mu.RLock()
	entry, exists := l.keyStore[keyId]
	l.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("key with ID %s not found", keyId)
	}

	c, err := claim.NewWithdrawalClaim(depositIndex, recipient, entry.keyPair)
	if err != nil {
		return nil, fmt.Errorf("failed to sign withdrawal with key %s: %w", keyId, err)
	}

	l.logger.Debug("Signed withdrawal",
		zap.String("keyId", keyId),
		zap.Uint64("depositIndex", depositIndex),
		zap.String("recipient", recipient.Hex()),
	)

	return c, nil
}

// Export returns the full key pair, including the private key, for embedding
// in a claim link.
func (l *LocalKeyGenerator) Export(keyId string) (*keys.ExportedKeyPair, error) {
	l.mu.RLock()
	entry, exists := l.keyStore[keyId]
	l.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("key with ID %s not found", keyId)
	}
	exported := entry.keyPair.Export()
	return &exported, nil
}

// LoadPrivateKeyFromHex loads a private key from a hex string into the key store.
// The hex string can optionally start with "0x".
func (l *LocalKeyGenerator) LoadPrivateKeyFromHex(keyId string, privateKeyHex string, label string) error {
	kp, err := keys.NewKeyPairFromHex(privateKeyHex)
	if err != nil {
		return fmt.Errorf("failed to parse private key from hex: %w", err)
	}
	_, err = l.store(keyId, kp, label)
	return err
}

// Helper functions for testing

// GetKeyCount returns the number of keys in the store.
func (l *LocalKeyGenerator) GetKeyCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keyStore)
}

// ClearKeys removes all keys from the store.
func (l *LocalKeyGenerator) ClearKeys() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keyStore = make(map[string]*keyEntry)
	l.order = nil
	l.logger.Info("Cleared all keys from store")
}

// KeyExists checks if a key with the given ID exists in the store.
func (l *LocalKeyGenerator) KeyExists(keyId string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, exists := l.keyStore[keyId]
	return exists
}

// GetKeyByLabel returns the earliest stored key carrying label, or nil.
func (l *LocalKeyGenerator) GetKeyByLabel(label string) *keyGenerator.GeneratedLinkKey {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, keyId := range l.order {
		if entry := l.keyStore[keyId]; entry.label == label {
			return entry.toGenerated(keyId)
		}
	}
	return nil
}
