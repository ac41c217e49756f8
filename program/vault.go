// Package program implements the vault program's state machine: vault
// accounting, the minter whitelist, and the withdrawal request lifecycle,
// executed atomically against a ledger store.
package program

import (
	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
)

const (
	// OneBitcoin is one whole unit in 8-decimal fixed point. NAV prices one
	// share in these units.
	OneBitcoin uint64 = 100_000_000

	// MaxFeeBps caps every fee ratio at 100%.
	MaxFeeBps uint16 = 10_000
)

// WhitelistedToken is one accepted deposit currency with its fee.
type WhitelistedToken struct {
	Mint          solana.PublicKey `json:"mint"`
	DepositFeeBps uint16           `json:"deposit_fee_bps"`
}

// Vault is the per-target-asset configuration and accounting record. One
// vault exists per target mint, at the address derived from it.
type Vault struct {
	Admin             solana.PublicKey                `json:"admin"`
	Mint              solana.PublicKey                `json:"mint"`
	FeeReceiver       solana.PublicKey                `json:"fee_receiver"`
	Treasurer         solana.PublicKey                `json:"treasurer"`
	DepositCurrencies []WhitelistedToken              `json:"deposit_currencies"`
	Verifier          [solvbtc.VerifierKeyLength]byte `json:"verifier"`
	OracleUpdated     int64                           `json:"oracle_updated"`
	OracleManager     solana.PublicKey                `json:"oracle_manager"`
	Nav               uint64                          `json:"nav"`
	WithdrawFeeBps    uint16                          `json:"withdraw_fee_bps"`
	Bump              uint8                           `json:"bump"`
}

// NewVault validates and assembles an initialized vault record.
func NewVault(admin, mint, feeReceiver, treasurer solana.PublicKey,
	verifier [solvbtc.VerifierKeyLength]byte, oracleManager solana.PublicKey,
	nav uint64, withdrawFeeBps uint16, bump uint8) (*Vault, error) {

	if err := validateNav(nav); err != nil {
		return nil, err
	}
	if err := validateFee(withdrawFeeBps); err != nil {
		return nil, err
	}
	return &Vault{
		Admin:          admin,
		Mint:           mint,
		FeeReceiver:    feeReceiver,
		Treasurer:      treasurer,
		Verifier:       verifier,
		OracleManager:  oracleManager,
		Nav:            nav,
		WithdrawFeeBps: withdrawFeeBps,
		Bump:           bump,
	}, nil
}

// validateNav enforces the NAV floor of 1.0: a share can never be priced
// below one whole reference unit.
func validateNav(nav uint64) error {
	if nav < OneBitcoin {
		return solvbtc.Errorf(solvbtc.CodeInvalidNAVValue,
			"nav %d below minimum %d", nav, OneBitcoin)
	}
	return nil
}

func validateFee(feeBps uint16) error {
	if feeBps > MaxFeeBps {
		return solvbtc.Errorf(solvbtc.CodeInvalidFeeRatio,
			"fee %d bps exceeds maximum %d", feeBps, MaxFeeBps)
	}
	return nil
}

// IsWhitelisted reports whether mint is an accepted deposit currency.
func (v *Vault) IsWhitelisted(mint solana.PublicKey) bool {
	for _, token := range v.DepositCurrencies {
		if token.Mint == mint {
			return true
		}
	}
	return false
}

// DepositFee returns the fee for a whitelisted currency.
func (v *Vault) DepositFee(mint solana.PublicKey) (uint16, error) {
	for _, token := range v.DepositCurrencies {
		if token.Mint == mint {
			return token.DepositFeeBps, nil
		}
	}
	return 0, solvbtc.Errorf(solvbtc.CodeCurrencyNotFound, "currency %s not found", mint)
}

// AddCurrency whitelists a deposit currency. Duplicates are rejected.
func (v *Vault) AddCurrency(mint solana.PublicKey, depositFeeBps uint16) error {
	if mint.IsZero() {
		return solvbtc.Errorf(solvbtc.CodeInvalidAddress, "currency mint must not be the zero address")
	}
	if err := validateFee(depositFeeBps); err != nil {
		return err
	}
	if v.IsWhitelisted(mint) {
		return solvbtc.Errorf(solvbtc.CodeCurrencyAlreadyExists, "currency %s already exists", mint)
	}
	v.DepositCurrencies = append(v.DepositCurrencies, WhitelistedToken{Mint: mint, DepositFeeBps: depositFeeBps})
	return nil
}

// RemoveCurrency drops a currency from the whitelist. Removing an absent
// currency is a no-op, so retried removals are safe.
func (v *Vault) RemoveCurrency(mint solana.PublicKey) error {
	if mint.IsZero() {
		return solvbtc.Errorf(solvbtc.CodeInvalidAddress, "currency mint must not be the zero address")
	}
	for i, token := range v.DepositCurrencies {
		if token.Mint == mint {
			v.DepositCurrencies = append(v.DepositCurrencies[:i], v.DepositCurrencies[i+1:]...)
			return nil
		}
	}
	return nil
}

// SetDepositFee updates the fee of an already-whitelisted currency.
func (v *Vault) SetDepositFee(mint solana.PublicKey, depositFeeBps uint16) error {
	if err := validateFee(depositFeeBps); err != nil {
		return err
	}
	for i, token := range v.DepositCurrencies {
		if token.Mint == mint {
			v.DepositCurrencies[i].DepositFeeBps = depositFeeBps
			return nil
		}
	}
	return solvbtc.Errorf(solvbtc.CodeCurrencyNotFound, "currency %s not found", mint)
}

// SetWithdrawFee updates the settlement fee.
func (v *Vault) SetWithdrawFee(feeBps uint16) error {
	if err := validateFee(feeBps); err != nil {
		return err
	}
	v.WithdrawFeeBps = feeBps
	return nil
}

// SetNav replaces the NAV. NAV is monotonically non-decreasing: a value
// below the current one is rejected so later settlements can never redeem
// for less per share than earlier ones could.
func (v *Vault) SetNav(nav uint64) error {
	if err := validateNav(nav); err != nil {
		return err
	}
	if nav < v.Nav {
		return solvbtc.Errorf(solvbtc.CodeInvalidNAVValue,
			"nav %d below current %d", nav, v.Nav)
	}
	v.Nav = nav
	return nil
}

// SharesFromDeposit converts a deposit amount to gross target shares:
// amount * 1e8 / nav.
func (v *Vault) SharesFromDeposit(amount uint64) (uint64, error) {
	return mulDiv(amount, OneBitcoin, v.Nav)
}

// WithdrawalFromShares converts shares to a reference-unit amount at the
// vault's NAV: shares * nav / 1e8.
func (v *Vault) WithdrawalFromShares(shares uint64) (uint64, error) {
	if err := validateNav(v.Nav); err != nil {
		return 0, err
	}
	return mulDiv(shares, v.Nav, OneBitcoin)
}

// CalculateFee splits amount into (net, fee) for a basis-point fee, rounding
// the fee down.
func CalculateFee(amount uint64, feeBps uint16) (net, fee uint64, err error) {
	fee, err = mulDiv(amount, uint64(feeBps), uint64(MaxFeeBps))
	if err != nil {
		return 0, 0, err
	}
	return amount - fee, fee, nil
}
