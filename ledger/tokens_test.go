package ledger

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenFixture struct {
	store     *MemStore
	mint      solana.PublicKey
	authority solana.PublicKey
	alice     solana.PublicKey
	bob       solana.PublicKey
}

func newTokenFixture(t *testing.T) *tokenFixture {
	t.Helper()
	f := &tokenFixture{
		store:     NewMemStore(),
		mint:      testAddr("mint"),
		authority: testAddr("authority"),
		alice:     testAddr("alice"),
		bob:       testAddr("bob"),
	}
	err := f.store.Update(context.Background(), func(tx Tx) error {
		tokens := NewTokens(tx)
		require.NoError(t, tokens.CreateMint(f.mint, f.authority, 8))
		for _, owner := range []solana.PublicKey{f.alice, f.bob} {
			_, err := tokens.CreateAssociatedAccount(owner, f.mint)
			require.NoError(t, err)
		}
		return nil
	})
	require.NoError(t, err)
	return f
}

func (f *tokenFixture) update(t *testing.T, fn func(*Tokens) error) error {
	t.Helper()
	return f.store.Update(context.Background(), func(tx Tx) error {
		return fn(NewTokens(tx))
	})
}

func (f *tokenFixture) balance(t *testing.T, owner solana.PublicKey) uint64 {
	t.Helper()
	var amount uint64
	require.NoError(t, f.store.View(context.Background(), func(tx Tx) error {
		var err error
		amount, err = NewTokens(tx).Balance(owner, f.mint)
		return err
	}))
	return amount
}

func TestTokensMintTransferBurn(t *testing.T) {
	f := newTokenFixture(t)

	require.NoError(t, f.update(t, func(tokens *Tokens) error {
		return tokens.MintTo(f.mint, f.alice, 1_000, f.authority)
	}))
	assert.Equal(t, uint64(1_000), f.balance(t, f.alice))

	require.NoError(t, f.update(t, func(tokens *Tokens) error {
		return tokens.Transfer(f.mint, f.alice, f.bob, 400)
	}))
	assert.Equal(t, uint64(600), f.balance(t, f.alice))
	assert.Equal(t, uint64(400), f.balance(t, f.bob))

	require.NoError(t, f.update(t, func(tokens *Tokens) error {
		return tokens.Burn(f.mint, f.bob, 150)
	}))
	assert.Equal(t, uint64(250), f.balance(t, f.bob))

	// Supply tracks mints and burns.
	require.NoError(t, f.store.View(context.Background(), func(tx Tx) error {
		var rec MintRecord
		require.NoError(t, tx.Read(f.mint, &rec))
		assert.Equal(t, uint64(850), rec.Supply)
		return nil
	}))
}

func TestTokensTransferInsufficient(t *testing.T) {
	f := newTokenFixture(t)

	err := f.update(t, func(tokens *Tokens) error {
		return tokens.Transfer(f.mint, f.alice, f.bob, 1)
	})
	assert.ErrorIs(t, err, solvbtc.ErrInsufficientFunds)

	err = f.update(t, func(tokens *Tokens) error {
		return tokens.Burn(f.mint, f.alice, 1)
	})
	assert.ErrorIs(t, err, solvbtc.ErrInsufficientFunds)
}

func TestTokensMintAuthority(t *testing.T) {
	f := newTokenFixture(t)

	err := f.update(t, func(tokens *Tokens) error {
		return tokens.MintTo(f.mint, f.alice, 10, f.bob)
	})
	assert.ErrorIs(t, err, solvbtc.ErrUnauthorized)
	assert.Equal(t, uint64(0), f.balance(t, f.alice))
}

func TestTokensMultisigAuthority(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	mint := testAddr("ms-mint")
	multisig := testAddr("ms-authority")
	vaultSigner := testAddr("ms-vault")
	poolSigner := testAddr("ms-pool")
	outsider := testAddr("ms-outsider")
	user := testAddr("ms-user")

	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		tokens := NewTokens(tx)
		require.NoError(t, tokens.CreateMultisig(multisig, 1, []solana.PublicKey{vaultSigner, poolSigner}))
		require.NoError(t, tokens.CreateMint(mint, multisig, 8))
		_, err := tokens.CreateAssociatedAccount(user, mint)
		return err
	}))

	// Either multisig member can sign a mint.
	for _, signer := range []solana.PublicKey{vaultSigner, poolSigner} {
		require.NoError(t, store.Update(ctx, func(tx Tx) error {
			return NewTokens(tx).MintTo(mint, user, 5, signer)
		}))
	}

	err := store.Update(ctx, func(tx Tx) error {
		return NewTokens(tx).MintTo(mint, user, 5, outsider)
	})
	assert.ErrorIs(t, err, solvbtc.ErrUnauthorized)

	require.NoError(t, store.View(ctx, func(tx Tx) error {
		amount, err := NewTokens(tx).Balance(user, mint)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), amount)
		return nil
	}))
}

func TestTokensAssociatedAccountIdempotent(t *testing.T) {
	f := newTokenFixture(t)

	var first, second solana.PublicKey
	require.NoError(t, f.update(t, func(tokens *Tokens) error {
		var err error
		first, err = tokens.CreateAssociatedAccount(f.alice, f.mint)
		require.NoError(t, err)
		second, err = tokens.CreateAssociatedAccount(f.alice, f.mint)
		return err
	}))
	assert.Equal(t, first, second)

	derived, _, err := solana.FindAssociatedTokenAddress(f.alice, f.mint)
	require.NoError(t, err)
	assert.Equal(t, derived, first)
}

func TestTokensMissingAccounts(t *testing.T) {
	f := newTokenFixture(t)
	stranger := testAddr("stranger")

	// Transfers to owners without token accounts fail; balances of missing
	// accounts read as zero.
	err := f.update(t, func(tokens *Tokens) error {
		return tokens.Transfer(f.mint, f.alice, stranger, 0)
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	assert.Equal(t, uint64(0), f.balance(t, stranger))
}
