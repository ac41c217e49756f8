package program

import (
	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
)

// WithdrawRequest is one in-flight withdrawal. Its existence at the derived
// address is the locked-shares liability; closing it settles the request
// and releases the liability in the same transaction. The NAV snapshot and
// the signature encoding are frozen at creation.
type WithdrawRequest struct {
	User                 solana.PublicKey                 `json:"user"`
	WithdrawTokenAccount solana.PublicKey                 `json:"withdraw_token_account"`
	WithdrawToken        solana.PublicKey                 `json:"withdraw_token"`
	WithdrawAmount       uint64                           `json:"withdraw_amount"`
	Token                solana.PublicKey                 `json:"token"`
	Shares               uint64                           `json:"shares"`
	RequestHash          [solvbtc.RequestHashLength]byte  `json:"request_hash"`
	Nav                  uint64                           `json:"nav"`
	Encoding             solvbtc.SigEncoding              `json:"encoding"`
}

// Digest returns the bytes the off-chain verifier must have signed for this
// request, per the encoding persisted at creation.
func (r *WithdrawRequest) Digest() ([32]byte, error) {
	return solvbtc.DigestFor(r.Encoding, r.User, r.WithdrawToken, r.RequestHash, r.Shares, r.Nav)
}

// VerifySignature recovers the signer of this request's digest and compares
// it byte-exact against the vault's verifier key. A mismatch is
// MissingRequiredSignature; the request itself is untouched either way.
func (r *WithdrawRequest) VerifySignature(sig [solvbtc.SignatureLength]byte, recoveryOdd bool, verifier [solvbtc.VerifierKeyLength]byte) error {
	digest, err := r.Digest()
	if err != nil {
		return err
	}
	return solvbtc.VerifyWithdrawSignature(digest[:], sig, recoveryOdd, verifier)
}
