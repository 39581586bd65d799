// Package claim builds and checks the withdrawal authorizations a link key
// holder submits to the Peanut contract.
package claim
