package program

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinterManagerMembership(t *testing.T) {
	m := &MinterManager{Admin: testKey("minter-admin")}
	bridge, relayer := testKey("bridge"), testKey("relayer")

	require.NoError(t, m.AddMinter(bridge))
	require.NoError(t, m.AddMinter(relayer))
	assert.True(t, m.HasMinter(bridge))
	assert.True(t, m.HasMinter(relayer))
	assert.False(t, m.HasMinter(testKey("stranger")))

	err := m.AddMinter(bridge)
	assert.ErrorIs(t, err, solvbtc.ErrMinterAlreadyExists)
	err = m.AddMinter(solana.PublicKey{})
	assert.ErrorIs(t, err, solvbtc.ErrInvalidAddress)

	require.NoError(t, m.RemoveMinter(bridge))
	assert.False(t, m.HasMinter(bridge))
	assert.True(t, m.HasMinter(relayer))

	// Unlike currency removal, deregistering an unknown minter is an error.
	err = m.RemoveMinter(bridge)
	assert.ErrorIs(t, err, solvbtc.ErrMinterNotFound)
	err = m.RemoveMinter(solana.PublicKey{})
	assert.ErrorIs(t, err, solvbtc.ErrInvalidAddress)
}
