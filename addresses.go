package solvbtc

import (
	"crypto/rand"

	"github.com/gagliardetto/solana-go"
)

// Program-derived address seeds. These byte strings are part of the deployed
// program's address space; changing any of them diverges every derived
// address from the on-chain accounts.
const (
	VaultSeed           = "vault"
	MinterManagerSeed   = "minter_manager"
	PoolSignerSeed      = "ccip_tokenpool_signer"
	WithdrawRequestSeed = "withdraw_request"
)

// RequestHashLength is the required length of a withdrawal request nonce.
const RequestHashLength = 32

var (
	// ProgramID is the deployed vault program.
	ProgramID = solana.MustPublicKeyFromBase58("CAm2xucNj5S5xRtGikxBbZcCyXLaz3Y3VyBd6CewVBxn")

	// CCIPTokenPoolProgramID owns the bridging pool signer addresses.
	CCIPTokenPoolProgramID = solana.MustPublicKeyFromBase58("ECvqYduigrFHeAU1kFCkehiiQz9eaeddUz6gH7BfD7AL")

	// Well-known target asset mints.
	SolvBTCMint    = solana.MustPublicKeyFromBase58("SoLvHDFVstC74Jr9eNLTDoG4goSUsn1RENmjNtFKZvW")
	XSolvBTCMint   = solana.MustPublicKeyFromBase58("SoLvAiHLF7LGEaiTN5KGZt1bNnraoWTi5mjcvRoDAX4")
	SolvBTCJupMint = solana.MustPublicKeyFromBase58("SoLvzL3ZVjofmNB5LYFrf94QtNhMUSea4DawFhnAau8")
)

// DeriveVaultAddress returns the vault PDA for a target asset mint.
func DeriveVaultAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(VaultSeed), mint.Bytes()},
		ProgramID,
	)
}

// DeriveMinterManagerAddress returns the minter manager PDA paired with a
// vault.
func DeriveMinterManagerAddress(vault solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(MinterManagerSeed), vault.Bytes()},
		ProgramID,
	)
}

// DerivePoolSignerAddress returns the bridging pool's signer PDA for a mint.
// The address lives in the CCIP token pool program's domain, not the vault
// program's.
func DerivePoolSignerAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(PoolSignerSeed), mint.Bytes()},
		CCIPTokenPoolProgramID,
	)
}

// DeriveWithdrawRequestAddress returns the PDA of a single withdrawal
// request, keyed by (vault, withdraw mint, user, request hash). The hash
// must be exactly 32 bytes; anything else is rejected before derivation.
func DeriveWithdrawRequestAddress(vault, withdrawMint, user solana.PublicKey, hash []byte) (solana.PublicKey, uint8, error) {
	if len(hash) != RequestHashLength {
		return solana.PublicKey{}, 0, Errorf(CodeInvalidInput,
			"request hash must be %d bytes, got %d", RequestHashLength, len(hash))
	}
	return solana.FindProgramAddress(
		[][]byte{
			[]byte(WithdrawRequestSeed),
			vault.Bytes(),
			withdrawMint.Bytes(),
			user.Bytes(),
			hash,
		},
		ProgramID,
	)
}

// NewRequestHash returns a random 32-byte withdrawal request nonce.
func NewRequestHash() ([RequestHashLength]byte, error) {
	var hash [RequestHashLength]byte
	if _, err := rand.Read(hash[:]); err != nil {
		return hash, err
	}
	return hash, nil
}
