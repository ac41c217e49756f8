package program

import (
	"context"
	"fmt"
	"time"

	"github.com/decred/slog"
	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
	"github.com/solv-finance/SolvBTC-Solana-Contract/ledger"
)

// Config wires an Engine.
type Config struct {
	// Store holds program and token accounts.
	Store ledger.Store

	// Log receives instruction events. Defaults to a disabled logger.
	Log slog.Logger

	// InitializeAdmins, when non-empty, restricts who may initialize
	// vaults and minter managers.
	InitializeAdmins []solana.PublicKey

	// Now overrides the clock used for update timestamps.
	Now func() int64
}

// Engine executes instructions against the account store. Each Execute call
// runs inside one store transaction: every side effect of an instruction
// commits atomically, and any failure rolls all of them back. Nothing here
// blocks; all work is a single synchronous pass over loaded state.
type Engine struct {
	store  ledger.Store
	log    slog.Logger
	admins []solana.PublicKey
	now    func() int64
}

// NewEngine returns an engine over the given store.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("program: Config.Store is required")
	}
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	now := cfg.Now
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	return &Engine{store: cfg.Store, log: log, admins: cfg.InitializeAdmins, now: now}, nil
}

// Execute runs one instruction atomically.
func (e *Engine) Execute(ctx context.Context, ix Instruction) error {
	return e.store.Update(ctx, func(tx ledger.Tx) error {
		return e.execute(tx, ix)
	})
}

func (e *Engine) execute(tx ledger.Tx, ix Instruction) error {
	switch ix := ix.(type) {
	case InitializeVault:
		return e.initializeVault(tx, ix)
	case TransferVaultAdmin:
		return e.updateVault(tx, ix.Mint, ix.Admin, func(v *Vault) error {
			v.Admin = ix.NewAdmin
			return nil
		})
	case AddCurrency:
		return e.updateVault(tx, ix.Mint, ix.Admin, func(v *Vault) error {
			return v.AddCurrency(ix.Currency, ix.DepositFeeBps)
		})
	case RemoveCurrency:
		return e.updateVault(tx, ix.Mint, ix.Admin, func(v *Vault) error {
			return v.RemoveCurrency(ix.Currency)
		})
	case SetDepositFee:
		return e.updateVault(tx, ix.Mint, ix.Admin, func(v *Vault) error {
			return v.SetDepositFee(ix.Currency, ix.DepositFeeBps)
		})
	case SetWithdrawFee:
		return e.updateVault(tx, ix.Mint, ix.Admin, func(v *Vault) error {
			return v.SetWithdrawFee(ix.WithdrawFeeBps)
		})
	case SetFeeReceiver:
		return e.updateVault(tx, ix.Mint, ix.Admin, func(v *Vault) error {
			v.FeeReceiver = ix.FeeReceiver
			return nil
		})
	case SetVerifier:
		return e.updateVault(tx, ix.Mint, ix.Admin, func(v *Vault) error {
			v.Verifier = ix.Verifier
			return nil
		})
	case SetTreasurer:
		return e.updateVault(tx, ix.Mint, ix.Admin, func(v *Vault) error {
			v.Treasurer = ix.Treasurer
			return nil
		})
	case SetNav:
		return e.updateVaultOracle(tx, ix.Mint, ix.OracleManager, func(v *Vault) error {
			return v.SetNav(ix.Nav)
		})
	case SetNavManager:
		return e.updateVaultOracle(tx, ix.Mint, ix.OracleManager, func(v *Vault) error {
			v.OracleManager = ix.NewManager
			return nil
		})
	case Deposit:
		return e.deposit(tx, ix)
	case RequestWithdraw:
		return e.requestWithdraw(tx, ix)
	case Withdraw:
		return e.withdraw(tx, ix)
	case InitializeMinterManager:
		return e.initializeMinterManager(tx, ix)
	case AddMinter:
		return e.updateMinterManager(tx, ix.Mint, ix.Admin, func(m *MinterManager) error {
			return m.AddMinter(ix.Minter)
		})
	case RemoveMinter:
		return e.updateMinterManager(tx, ix.Mint, ix.Admin, func(m *MinterManager) error {
			return m.RemoveMinter(ix.Minter)
		})
	case TransferMinterAdmin:
		return e.updateMinterManager(tx, ix.Mint, ix.Admin, func(m *MinterManager) error {
			m.Admin = ix.NewAdmin
			return nil
		})
	case MintTo:
		return e.mintTo(tx, ix)
	default:
		return solvbtc.Errorf(solvbtc.CodeInvalidInput, "unknown instruction %T", ix)
	}
}

// checkInitializeAuthority enforces the initialize allowlist when one is
// configured.
func (e *Engine) checkInitializeAuthority(authority solana.PublicKey) error {
	if len(e.admins) == 0 {
		return nil
	}
	for _, admin := range e.admins {
		if admin == authority {
			return nil
		}
	}
	return solvbtc.Errorf(solvbtc.CodeUnauthorized,
		"authority %s is not allowed to initialize", authority)
}

func (e *Engine) loadVault(tx ledger.Tx, mint solana.PublicKey) (solana.PublicKey, *Vault, error) {
	addr, _, err := solvbtc.DeriveVaultAddress(mint)
	if err != nil {
		return addr, nil, err
	}
	var v Vault
	if err := tx.Read(addr, &v); err != nil {
		return addr, nil, err
	}
	return addr, &v, nil
}

func (e *Engine) updateVault(tx ledger.Tx, mint, admin solana.PublicKey, fn func(*Vault) error) error {
	addr, v, err := e.loadVault(tx, mint)
	if err != nil {
		return err
	}
	if v.Admin != admin {
		return solvbtc.Errorf(solvbtc.CodeUnauthorized, "%s is not the vault admin", admin)
	}
	if err := fn(v); err != nil {
		return err
	}
	v.OracleUpdated = e.now()
	return tx.Write(addr, v)
}

func (e *Engine) updateVaultOracle(tx ledger.Tx, mint, manager solana.PublicKey, fn func(*Vault) error) error {
	addr, v, err := e.loadVault(tx, mint)
	if err != nil {
		return err
	}
	if v.OracleManager != manager {
		return solvbtc.Errorf(solvbtc.CodeUnauthorized, "%s is not the oracle manager", manager)
	}
	if err := fn(v); err != nil {
		return err
	}
	v.OracleUpdated = e.now()
	return tx.Write(addr, v)
}

func (e *Engine) initializeVault(tx ledger.Tx, ix InitializeVault) error {
	if err := e.checkInitializeAuthority(ix.Authority); err != nil {
		return err
	}
	tokens := ledger.NewTokens(tx)
	if !tokens.MintExists(ix.Mint) {
		return solvbtc.Errorf(solvbtc.CodeAccountNotFound, "mint %s does not exist", ix.Mint)
	}
	addr, bump, err := solvbtc.DeriveVaultAddress(ix.Mint)
	if err != nil {
		return err
	}
	v, err := NewVault(ix.Admin, ix.Mint, ix.FeeReceiver, ix.Treasurer,
		ix.Verifier, ix.OracleManager, ix.Nav, ix.WithdrawFeeBps, bump)
	if err != nil {
		return err
	}
	v.OracleUpdated = e.now()
	if err := tx.Create(addr, ledger.KindVault, v); err != nil {
		return err
	}
	e.log.Infof("vault initialized: vault=%s mint=%s admin=%s nav=%d withdraw_fee_bps=%d",
		addr, ix.Mint, ix.Admin, ix.Nav, ix.WithdrawFeeBps)
	return nil
}

func (e *Engine) deposit(tx ledger.Tx, ix Deposit) error {
	vaultAddr, v, err := e.loadVault(tx, ix.Mint)
	if err != nil {
		return err
	}
	if !v.IsWhitelisted(ix.DepositMint) {
		return solvbtc.Errorf(solvbtc.CodeUnknownCurrency,
			"currency %s not whitelisted in vault %s", ix.DepositMint, vaultAddr)
	}
	feeBps, err := v.DepositFee(ix.DepositMint)
	if err != nil {
		return err
	}
	gross, err := v.SharesFromDeposit(ix.Amount)
	if err != nil {
		return err
	}
	net, fee, err := CalculateFee(gross, feeBps)
	if err != nil {
		return err
	}
	if net < ix.MinAmountOut {
		return solvbtc.Errorf(solvbtc.CodeSlippageExceeded,
			"minted %d below minimum %d", net, ix.MinAmountOut)
	}

	tokens := ledger.NewTokens(tx)
	if err := tokens.Transfer(ix.DepositMint, ix.User, v.Treasurer, ix.Amount); err != nil {
		return err
	}
	// The vault PDA co-signs the mint's multisig authority.
	if err := tokens.MintTo(ix.Mint, ix.User, net, vaultAddr); err != nil {
		return err
	}

	e.log.Infof("deposit: user=%s vault=%s deposit_mint=%s amount=%d minted=%d fee=%d",
		ix.User, vaultAddr, ix.DepositMint, ix.Amount, net, fee)
	return nil
}

func (e *Engine) requestWithdraw(tx ledger.Tx, ix RequestWithdraw) error {
	switch ix.Encoding {
	case solvbtc.SigEncodingRaw, solvbtc.SigEncodingEIP191:
	default:
		return solvbtc.Errorf(solvbtc.CodeInvalidInput, "unknown signature encoding %d", ix.Encoding)
	}
	vaultAddr, v, err := e.loadVault(tx, ix.Mint)
	if err != nil {
		return err
	}
	if !v.IsWhitelisted(ix.WithdrawMint) {
		return solvbtc.Errorf(solvbtc.CodeUnknownCurrency,
			"currency %s not whitelisted in vault %s", ix.WithdrawMint, vaultAddr)
	}
	if ix.Shares == 0 {
		return solvbtc.Errorf(solvbtc.CodeInvalidInput, "cannot withdraw zero shares")
	}

	tokens := ledger.NewTokens(tx)
	balance, err := tokens.Balance(ix.User, v.Mint)
	if err != nil {
		return err
	}
	if balance < ix.Shares {
		return solvbtc.Errorf(solvbtc.CodeInsufficientShares,
			"balance %d below requested %d", balance, ix.Shares)
	}

	withdrawAmount, err := v.WithdrawalFromShares(ix.Shares)
	if err != nil {
		return err
	}
	if withdrawAmount == 0 {
		return solvbtc.Errorf(solvbtc.CodeInvalidInput, "withdraw amount rounds to zero")
	}

	if err := tokens.Burn(v.Mint, ix.User, ix.Shares); err != nil {
		return err
	}

	reqAddr, _, err := solvbtc.DeriveWithdrawRequestAddress(vaultAddr, ix.WithdrawMint, ix.User, ix.RequestHash[:])
	if err != nil {
		return err
	}
	userWithdrawTA, err := tokens.AssociatedAddress(ix.User, ix.WithdrawMint)
	if err != nil {
		return err
	}
	req := &WithdrawRequest{
		User:                 ix.User,
		WithdrawTokenAccount: userWithdrawTA,
		WithdrawToken:        ix.WithdrawMint,
		WithdrawAmount:       withdrawAmount,
		Token:                v.Mint,
		Shares:               ix.Shares,
		RequestHash:          ix.RequestHash,
		Nav:                  v.Nav,
		Encoding:             ix.Encoding,
	}
	if err := tx.Create(reqAddr, ledger.KindWithdrawRequest, req); err != nil {
		return err
	}

	e.log.Infof("withdraw requested: user=%s vault=%s withdraw_mint=%s shares=%d amount=%d nav=%d encoding=%s",
		ix.User, vaultAddr, ix.WithdrawMint, ix.Shares, withdrawAmount, v.Nav, ix.Encoding)
	return nil
}

func (e *Engine) withdraw(tx ledger.Tx, ix Withdraw) error {
	vaultAddr, v, err := e.loadVault(tx, ix.Mint)
	if err != nil {
		return err
	}
	reqAddr, _, err := solvbtc.DeriveWithdrawRequestAddress(vaultAddr, ix.WithdrawMint, ix.User, ix.RequestHash[:])
	if err != nil {
		return err
	}

	// A settled request no longer exists at its derived address, so a
	// replayed settlement fails here.
	var req WithdrawRequest
	if err := tx.Read(reqAddr, &req); err != nil {
		return err
	}

	tokens := ledger.NewTokens(tx)
	userWithdrawTA, err := tokens.AssociatedAddress(ix.User, ix.WithdrawMint)
	if err != nil {
		return err
	}
	if userWithdrawTA != req.WithdrawTokenAccount {
		return solvbtc.Errorf(solvbtc.CodeInvalidAddress,
			"destination %s does not match requested account %s", userWithdrawTA, req.WithdrawTokenAccount)
	}

	if err := req.VerifySignature(ix.Signature, ix.RecoveryOdd, v.Verifier); err != nil {
		return err
	}

	net, fee, err := CalculateFee(req.WithdrawAmount, v.WithdrawFeeBps)
	if err != nil {
		return err
	}
	if err := tokens.Transfer(ix.WithdrawMint, vaultAddr, v.FeeReceiver, fee); err != nil {
		return err
	}
	if err := tokens.Transfer(ix.WithdrawMint, vaultAddr, ix.User, net); err != nil {
		return err
	}
	if err := tx.Close(reqAddr); err != nil {
		return err
	}

	e.log.Infof("withdraw settled: user=%s vault=%s withdraw_mint=%s payout=%d fee=%d request=%s",
		ix.User, vaultAddr, ix.WithdrawMint, net, fee, reqAddr)
	return nil
}

func (e *Engine) loadMinterManager(tx ledger.Tx, mint solana.PublicKey) (solana.PublicKey, *MinterManager, error) {
	vaultAddr, _, err := solvbtc.DeriveVaultAddress(mint)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	addr, _, err := solvbtc.DeriveMinterManagerAddress(vaultAddr)
	if err != nil {
		return addr, nil, err
	}
	var m MinterManager
	if err := tx.Read(addr, &m); err != nil {
		return addr, nil, err
	}
	return addr, &m, nil
}

func (e *Engine) updateMinterManager(tx ledger.Tx, mint, admin solana.PublicKey, fn func(*MinterManager) error) error {
	addr, m, err := e.loadMinterManager(tx, mint)
	if err != nil {
		return err
	}
	if m.Admin != admin {
		return solvbtc.Errorf(solvbtc.CodeUnauthorized, "%s is not the minter manager admin", admin)
	}
	if err := fn(m); err != nil {
		return err
	}
	m.Updated = e.now()
	return tx.Write(addr, m)
}

func (e *Engine) initializeMinterManager(tx ledger.Tx, ix InitializeMinterManager) error {
	if err := e.checkInitializeAuthority(ix.Authority); err != nil {
		return err
	}
	vaultAddr, _, err := solvbtc.DeriveVaultAddress(ix.Mint)
	if err != nil {
		return err
	}
	if !tx.Exists(vaultAddr) {
		return solvbtc.Errorf(solvbtc.CodeAccountNotFound, "vault %s does not exist", vaultAddr)
	}
	addr, bump, err := solvbtc.DeriveMinterManagerAddress(vaultAddr)
	if err != nil {
		return err
	}
	m := &MinterManager{Admin: ix.Admin, Updated: e.now(), Bump: bump}
	if err := tx.Create(addr, ledger.KindMinterManager, m); err != nil {
		return err
	}
	e.log.Infof("minter manager initialized: manager=%s vault=%s admin=%s", addr, vaultAddr, ix.Admin)
	return nil
}

func (e *Engine) mintTo(tx ledger.Tx, ix MintTo) error {
	_, m, err := e.loadMinterManager(tx, ix.Mint)
	if err != nil {
		return err
	}
	if !m.HasMinter(ix.Authority) {
		return solvbtc.Errorf(solvbtc.CodeUnauthorized, "%s is not a registered minter", ix.Authority)
	}
	vaultAddr, _, err := solvbtc.DeriveVaultAddress(ix.Mint)
	if err != nil {
		return err
	}

	tokens := ledger.NewTokens(tx)
	if _, err := tokens.CreateAssociatedAccount(ix.To, ix.Mint); err != nil {
		return err
	}
	if err := tokens.MintTo(ix.Mint, ix.To, ix.Amount, vaultAddr); err != nil {
		return err
	}

	e.log.Infof("mint: minter=%s mint=%s to=%s amount=%d", ix.Authority, ix.Mint, ix.To, ix.Amount)
	return nil
}
