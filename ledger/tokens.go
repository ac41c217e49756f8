package ledger

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
)

// MintRecord is a fungible asset definition. Authority may name a multisig
// account, in which case minting requires one of its members as signer.
type MintRecord struct {
	Mint      solana.PublicKey `json:"mint"`
	Authority solana.PublicKey `json:"authority"`
	Decimals  uint8            `json:"decimals"`
	Supply    uint64           `json:"supply"`
}

// TokenAccountRecord holds an owner's balance of one mint. Token accounts
// live at the associated token address derived from (owner, mint).
type TokenAccountRecord struct {
	Owner  solana.PublicKey `json:"owner"`
	Mint   solana.PublicKey `json:"mint"`
	Amount uint64           `json:"amount"`
}

// MultisigRecord is an M-of-N signer set usable as a mint authority.
type MultisigRecord struct {
	M       uint8              `json:"m"`
	Signers []solana.PublicKey `json:"signers"`
}

// Tokens exposes the token primitive over one store transaction, so token
// moves commit or roll back together with the program accounts that caused
// them.
type Tokens struct {
	tx Tx
}

// NewTokens wraps a transaction.
func NewTokens(tx Tx) *Tokens {
	return &Tokens{tx: tx}
}

// CreateMint registers a new mint under the given authority.
func (t *Tokens) CreateMint(mint, authority solana.PublicKey, decimals uint8) error {
	rec := MintRecord{Mint: mint, Authority: authority, Decimals: decimals}
	return t.tx.Create(mint, KindMint, &rec)
}

// CreateMultisig registers an M-of-N signer set at addr.
func (t *Tokens) CreateMultisig(addr solana.PublicKey, m uint8, signers []solana.PublicKey) error {
	if m == 0 || int(m) > len(signers) {
		return solvbtc.Errorf(solvbtc.CodeInvalidInput, "multisig requires 1 <= m <= %d, got %d", len(signers), m)
	}
	rec := MultisigRecord{M: m, Signers: signers}
	return t.tx.Create(addr, KindMultisig, &rec)
}

// MintExists reports whether a mint is registered.
func (t *Tokens) MintExists(mint solana.PublicKey) bool {
	return t.tx.Exists(mint)
}

// AssociatedAddress derives the token account address for (owner, mint).
func (t *Tokens) AssociatedAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	return addr, err
}

// CreateAssociatedAccount ensures the token account for (owner, mint)
// exists and returns its address. Idempotent.
func (t *Tokens) CreateAssociatedAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, err := t.AssociatedAddress(owner, mint)
	if err != nil {
		return addr, err
	}
	if t.tx.Exists(addr) {
		return addr, nil
	}
	rec := TokenAccountRecord{Owner: owner, Mint: mint}
	if err := t.tx.Create(addr, KindTokenAccount, &rec); err != nil {
		return addr, err
	}
	return addr, nil
}

// Balance returns the owner's balance of mint. A missing token account
// reads as zero.
func (t *Tokens) Balance(owner, mint solana.PublicKey) (uint64, error) {
	addr, err := t.AssociatedAddress(owner, mint)
	if err != nil {
		return 0, err
	}
	var rec TokenAccountRecord
	if err := t.tx.Read(addr, &rec); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return rec.Amount, nil
}

// Transfer moves amount of mint between the owners' token accounts. Both
// accounts must exist.
func (t *Tokens) Transfer(mint, fromOwner, toOwner solana.PublicKey, amount uint64) error {
	fromAddr, err := t.AssociatedAddress(fromOwner, mint)
	if err != nil {
		return err
	}
	toAddr, err := t.AssociatedAddress(toOwner, mint)
	if err != nil {
		return err
	}
	var from, to TokenAccountRecord
	if err := t.tx.Read(fromAddr, &from); err != nil {
		return err
	}
	if err := t.tx.Read(toAddr, &to); err != nil {
		return err
	}
	if from.Amount < amount {
		return solvbtc.Errorf(solvbtc.CodeInsufficientFunds,
			"transfer %d exceeds balance %d", amount, from.Amount)
	}
	from.Amount -= amount
	to.Amount += amount
	if err := t.tx.Write(fromAddr, &from); err != nil {
		return err
	}
	return t.tx.Write(toAddr, &to)
}

// MintTo mints amount of mint to the owner's token account. The signer must
// satisfy the mint authority: either the authority itself, or a member of
// the multisig the authority names.
func (t *Tokens) MintTo(mint, toOwner solana.PublicKey, amount uint64, signer solana.PublicKey) error {
	var mintRec MintRecord
	if err := t.tx.Read(mint, &mintRec); err != nil {
		return err
	}
	if err := t.checkMintAuthority(mintRec.Authority, signer); err != nil {
		return err
	}
	toAddr, err := t.AssociatedAddress(toOwner, mint)
	if err != nil {
		return err
	}
	var to TokenAccountRecord
	if err := t.tx.Read(toAddr, &to); err != nil {
		return err
	}
	to.Amount += amount
	mintRec.Supply += amount
	if err := t.tx.Write(toAddr, &to); err != nil {
		return err
	}
	return t.tx.Write(mint, &mintRec)
}

// Burn destroys amount of mint held by the owner.
func (t *Tokens) Burn(mint, owner solana.PublicKey, amount uint64) error {
	fromAddr, err := t.AssociatedAddress(owner, mint)
	if err != nil {
		return err
	}
	var from TokenAccountRecord
	if err := t.tx.Read(fromAddr, &from); err != nil {
		return err
	}
	if from.Amount < amount {
		return solvbtc.Errorf(solvbtc.CodeInsufficientFunds,
			"burn %d exceeds balance %d", amount, from.Amount)
	}
	var mintRec MintRecord
	if err := t.tx.Read(mint, &mintRec); err != nil {
		return err
	}
	from.Amount -= amount
	mintRec.Supply -= amount
	if err := t.tx.Write(fromAddr, &from); err != nil {
		return err
	}
	return t.tx.Write(mint, &mintRec)
}

func (t *Tokens) checkMintAuthority(authority, signer solana.PublicKey) error {
	kind, err := t.tx.KindOf(authority)
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return err
	}
	if kind == KindMultisig {
		var multisig MultisigRecord
		if err := t.tx.Read(authority, &multisig); err != nil {
			return err
		}
		for _, member := range multisig.Signers {
			if member == signer {
				return nil
			}
		}
		return solvbtc.Errorf(solvbtc.CodeUnauthorized,
			"signer %s is not a member of mint authority multisig %s", signer, authority)
	}
	if signer == authority {
		return nil
	}
	return solvbtc.Errorf(solvbtc.CodeUnauthorized,
		"signer %s is not the mint authority %s", signer, authority)
}
