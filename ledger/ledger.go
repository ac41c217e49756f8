// Package ledger provides the account store and token primitive the vault
// program executes against. Both are modeled after the external chain
// runtime: accounts are fixed-address records created, read, written and
// closed inside a transaction whose side effects commit atomically or not
// at all.
package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
)

// Sentinel errors shared by all store implementations.
var (
	ErrAccountExists   = solvbtc.ErrAccountExists
	ErrAccountNotFound = solvbtc.ErrAccountNotFound
)

// Kind tags the record type stored at an address, standing in for the
// on-chain account discriminator.
type Kind string

const (
	KindVault           Kind = "vault"
	KindMinterManager   Kind = "minter_manager"
	KindWithdrawRequest Kind = "withdraw_request"
	KindMint            Kind = "mint"
	KindTokenAccount    Kind = "token_account"
	KindMultisig        Kind = "multisig"
)

// Tx is a single atomic view of the account store. Writes made through a Tx
// become visible only if the enclosing Update commits.
type Tx interface {
	// Create stores a new record at addr. Fails with ErrAccountExists if
	// the address is already live.
	Create(addr solana.PublicKey, kind Kind, rec any) error

	// Read unmarshals the record at addr into rec. Fails with
	// ErrAccountNotFound if the address is not live.
	Read(addr solana.PublicKey, rec any) error

	// Write replaces the record at addr. Fails with ErrAccountNotFound if
	// the address is not live.
	Write(addr solana.PublicKey, rec any) error

	// Close removes the record at addr. After a commit the address no
	// longer names a live account. Fails with ErrAccountNotFound if the
	// address is not live.
	Close(addr solana.PublicKey) error

	// Exists reports whether addr names a live account.
	Exists(addr solana.PublicKey) bool

	// KindOf returns the discriminator of the record at addr. Fails with
	// ErrAccountNotFound if the address is not live.
	KindOf(addr solana.PublicKey) (Kind, error)
}

// Store executes functions against the account store. All effects of one
// Update call commit together; any error rolls every write back.
type Store interface {
	Update(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(Tx) error) error
}
