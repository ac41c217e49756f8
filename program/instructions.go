package program

import (
	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
)

// Instruction is the closed set of program operations. Every variant
// carries its full, typed payload including the verified signer; the engine
// dispatches on the concrete type. Signer fields stand in for the
// transaction-level signature checks the external runtime performs.
type Instruction interface {
	isInstruction()
}

// InitializeVault creates the vault for a target mint.
type InitializeVault struct {
	Authority      solana.PublicKey // must be on the initialize allowlist when one is configured
	Mint           solana.PublicKey
	Admin          solana.PublicKey
	FeeReceiver    solana.PublicKey
	Treasurer      solana.PublicKey
	Verifier       [solvbtc.VerifierKeyLength]byte
	OracleManager  solana.PublicKey
	Nav            uint64
	WithdrawFeeBps uint16
}

// TransferVaultAdmin hands vault configuration authority to a new address.
type TransferVaultAdmin struct {
	Admin    solana.PublicKey
	Mint     solana.PublicKey
	NewAdmin solana.PublicKey
}

// AddCurrency whitelists a deposit currency on the vault.
type AddCurrency struct {
	Admin         solana.PublicKey
	Mint          solana.PublicKey
	Currency      solana.PublicKey
	DepositFeeBps uint16
}

// RemoveCurrency removes a deposit currency from the vault whitelist.
type RemoveCurrency struct {
	Admin    solana.PublicKey
	Mint     solana.PublicKey
	Currency solana.PublicKey
}

// SetDepositFee updates the fee of a whitelisted currency.
type SetDepositFee struct {
	Admin         solana.PublicKey
	Mint          solana.PublicKey
	Currency      solana.PublicKey
	DepositFeeBps uint16
}

// SetWithdrawFee updates the vault's settlement fee.
type SetWithdrawFee struct {
	Admin          solana.PublicKey
	Mint           solana.PublicKey
	WithdrawFeeBps uint16
}

// SetFeeReceiver updates the address receiving withdrawal fees.
type SetFeeReceiver struct {
	Admin       solana.PublicKey
	Mint        solana.PublicKey
	FeeReceiver solana.PublicKey
}

// SetVerifier replaces the withdrawal verifier key.
type SetVerifier struct {
	Admin    solana.PublicKey
	Mint     solana.PublicKey
	Verifier [solvbtc.VerifierKeyLength]byte
}

// SetTreasurer updates the address holding deposited liquidity.
type SetTreasurer struct {
	Admin     solana.PublicKey
	Mint      solana.PublicKey
	Treasurer solana.PublicKey
}

// SetNav updates the vault NAV. Gated by the oracle manager.
type SetNav struct {
	OracleManager solana.PublicKey
	Mint          solana.PublicKey
	Nav           uint64
}

// SetNavManager hands NAV authority to a new address.
type SetNavManager struct {
	OracleManager solana.PublicKey
	Mint          solana.PublicKey
	NewManager    solana.PublicKey
}

// Deposit swaps a whitelisted currency for target shares at the live NAV.
type Deposit struct {
	User         solana.PublicKey
	Mint         solana.PublicKey // target mint, names the vault
	DepositMint  solana.PublicKey
	Amount       uint64
	MinAmountOut uint64
}

// RequestWithdraw burns shares and opens a withdrawal request with a frozen
// NAV snapshot.
type RequestWithdraw struct {
	User         solana.PublicKey
	Mint         solana.PublicKey // target mint, names the vault
	WithdrawMint solana.PublicKey
	RequestHash  [solvbtc.RequestHashLength]byte
	Shares       uint64
	Encoding     solvbtc.SigEncoding
}

// Withdraw settles an open request: verifies the authorization signature,
// pays out, and closes the request.
type Withdraw struct {
	User         solana.PublicKey
	Mint         solana.PublicKey // target mint, names the vault
	WithdrawMint solana.PublicKey
	RequestHash  [solvbtc.RequestHashLength]byte
	Signature    [solvbtc.SignatureLength]byte
	RecoveryOdd  bool
}

// InitializeMinterManager creates the minter manager paired with a vault.
type InitializeMinterManager struct {
	Authority solana.PublicKey // must be on the initialize allowlist when one is configured
	Mint      solana.PublicKey
	Admin     solana.PublicKey
}

// AddMinter registers an address allowed to mint the target asset.
type AddMinter struct {
	Admin  solana.PublicKey
	Mint   solana.PublicKey
	Minter solana.PublicKey
}

// RemoveMinter deregisters a minter.
type RemoveMinter struct {
	Admin  solana.PublicKey
	Mint   solana.PublicKey
	Minter solana.PublicKey
}

// TransferMinterAdmin hands minter-set authority to a new address.
type TransferMinterAdmin struct {
	Admin    solana.PublicKey
	Mint     solana.PublicKey
	NewAdmin solana.PublicKey
}

// MintTo mints target asset to a destination through the multisig mint
// authority. Gated by minter membership.
type MintTo struct {
	Authority solana.PublicKey
	Mint      solana.PublicKey
	To        solana.PublicKey
	Amount    uint64
}

func (InitializeVault) isInstruction()         {}
func (TransferVaultAdmin) isInstruction()      {}
func (AddCurrency) isInstruction()             {}
func (RemoveCurrency) isInstruction()          {}
func (SetDepositFee) isInstruction()           {}
func (SetWithdrawFee) isInstruction()          {}
func (SetFeeReceiver) isInstruction()          {}
func (SetVerifier) isInstruction()             {}
func (SetTreasurer) isInstruction()            {}
func (SetNav) isInstruction()                  {}
func (SetNavManager) isInstruction()           {}
func (Deposit) isInstruction()                 {}
func (RequestWithdraw) isInstruction()         {}
func (Withdraw) isInstruction()                {}
func (InitializeMinterManager) isInstruction() {}
func (AddMinter) isInstruction()               {}
func (RemoveMinter) isInstruction()            {}
func (TransferMinterAdmin) isInstruction()     {}
func (MintTo) isInstruction()                  {}
