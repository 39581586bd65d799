// Package contracts encodes calls to the Peanut escrow contracts and reads the
// per-chain deployment registry (contracts.json).
package contracts
