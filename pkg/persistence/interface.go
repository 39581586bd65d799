package persistence

import "errors"

var (
	// ErrClaimExists is returned when a claim for the same deposit is already stored.
	ErrClaimExists = errors.New("claim already exists for deposit")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("persistence layer is closed")
)

// IClaimPersistence stores relayed withdrawal claims.
// All implementations must be thread-safe as the relay serves requests concurrently.
//
// A deposit is identified by (chainId, contract, depositIndex) and can be
// claimed at most once, so SaveClaim never overwrites.
type IClaimPersistence interface {
	// SaveClaim persists a claim record.
	// Returns ErrClaimExists if a record with the same ClaimKey is already stored.
	SaveClaim(record *ClaimRecord) error

	// LoadClaim retrieves a claim by deposit.
	// Returns nil if it doesn't exist, error only on storage failure.
	LoadClaim(key ClaimKey) (*ClaimRecord, error)

	// ListClaims returns all claims sorted by chain id, contract and deposit index.
	// Returns empty slice if no claims exist.
	ListClaims() ([]*ClaimRecord, error)

	// DeleteClaim removes a claim.
	// Idempotent - returns nil if the claim doesn't exist.
	DeleteClaim(key ClaimKey) error

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations return ErrClosed.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	HealthCheck() error
}
