package program

import (
	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
)

// MinterManager holds the set of addresses allowed to mint a vault's target
// asset. One manager exists per vault, at the address derived from it.
type MinterManager struct {
	Admin   solana.PublicKey   `json:"admin"`
	Minters []solana.PublicKey `json:"minters"`
	Updated int64              `json:"updated"`
	Bump    uint8              `json:"bump"`
}

// HasMinter reports whether addr is a registered minter.
func (m *MinterManager) HasMinter(addr solana.PublicKey) bool {
	for _, minter := range m.Minters {
		if minter == addr {
			return true
		}
	}
	return false
}

// AddMinter registers a minter. Duplicates and the zero address are
// rejected.
func (m *MinterManager) AddMinter(addr solana.PublicKey) error {
	if addr.IsZero() {
		return solvbtc.Errorf(solvbtc.CodeInvalidAddress, "minter must not be the zero address")
	}
	if m.HasMinter(addr) {
		return solvbtc.Errorf(solvbtc.CodeMinterAlreadyExists, "minter %s already exists", addr)
	}
	m.Minters = append(m.Minters, addr)
	return nil
}

// RemoveMinter deregisters a minter. Removing an unknown minter is an
// error: a silent no-op here could mask a mistyped address in a
// security-relevant action.
func (m *MinterManager) RemoveMinter(addr solana.PublicKey) error {
	if addr.IsZero() {
		return solvbtc.Errorf(solvbtc.CodeInvalidAddress, "minter must not be the zero address")
	}
	for i, minter := range m.Minters {
		if minter == addr {
			m.Minters = append(m.Minters[:i], m.Minters[i+1:]...)
			return nil
		}
	}
	return solvbtc.Errorf(solvbtc.CodeMinterNotFound, "minter %s not found", addr)
}
