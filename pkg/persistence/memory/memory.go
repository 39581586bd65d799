package memory

import (
	"fmt"
	"sync"

	"github.com/peanutprotocol/peanut-go/pkg/persistence"
)

// MemoryPersistence is an in-memory implementation of IClaimPersistence.
// This implementation is intended for TESTING and local development.
//
// All data is stored in memory and will be lost when the process exits.
// Thread-safe using sync.RWMutex for concurrent access.
// Records are copied on the way in and out to prevent external mutation.
type MemoryPersistence struct {
	mu sync.RWMutex

	// claim key -> record
	claims map[persistence.ClaimKey]*persistence.ClaimRecord

	closed bool
}

// NewMemoryPersistence creates a new in-memory persistence layer.
// Prints a loud warning since relayed claims are lost on restart.
func NewMemoryPersistence() *MemoryPersistence {
	fmt.Println("⚠️  WARNING: Using in-memory persistence - ALL RELAYED CLAIMS WILL BE LOST ON RESTART")
	fmt.Println("⚠️  Set PEANUT_PERSISTENCE=badger or redis for production")

	return &MemoryPersistence{
		claims: make(map[persistence.ClaimKey]*persistence.ClaimRecord),
	}
}

// SaveClaim persists a claim record unless its deposit was already claimed.
func (m *MemoryPersistence) SaveClaim(record *persistence.ClaimRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	key := record.Key()
	if _, exists := m.claims[key]; exists {
		return fmt.Errorf("%w: %s", persistence.ErrClaimExists, key)
	}

	copied := *record
	copied.ContractAddress = key.ContractAddress
	m.claims[key] = &copied
	return nil
}

// LoadClaim retrieves a claim record by deposit.
func (m *MemoryPersistence) LoadClaim(key persistence.ClaimKey) (*persistence.ClaimRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	record, exists := m.claims[key.Normalize()]
	if !exists {
		return nil, nil // Not found is not an error
	}

	copied := *record
	return &copied, nil
}

// ListClaims returns all claim records sorted by key.
func (m *MemoryPersistence) ListClaims() ([]*persistence.ClaimRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	result := make([]*persistence.ClaimRecord, 0, len(m.claims))
	for _, record := range m.claims {
		copied := *record
		result = append(result, &copied)
	}
	persistence.SortClaimRecords(result)

	return result, nil
}

// DeleteClaim removes a claim record.
func (m *MemoryPersistence) DeleteClaim(key persistence.ClaimKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	delete(m.claims, key.Normalize())
	return nil
}

// Close marks the persistence layer as closed.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck always succeeds unless closed.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}
	return nil
}
