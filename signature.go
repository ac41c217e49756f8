package solvbtc

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	// SignatureLength is the compact r||s wire size. The recovery flag
	// travels alongside it, not inside it.
	SignatureLength = 64

	// VerifierKeyLength is an uncompressed secp256k1 public key with the
	// 0x04 format byte stripped.
	VerifierKeyLength = 64

	// compactSigMagicOffset is the header offset used by the compact
	// recoverable signature format.
	compactSigMagicOffset = 27
)

// SignDigest produces a deterministic ECDSA signature over a 32-byte digest.
// The returned signature is the compact 64-byte r||s form with s in its
// canonical low half; recoveryOdd records whether the recovery id of the
// chosen (r,s) is odd.
func SignDigest(priv *secp256k1.PrivateKey, digest []byte) (sig [SignatureLength]byte, recoveryOdd bool, err error) {
	if len(digest) != 32 {
		return sig, false, Errorf(CodeInvalidInput, "digest must be 32 bytes, got %d", len(digest))
	}
	compact := ecdsa.SignCompact(priv, digest, false)
	recoveryCode := compact[0] - compactSigMagicOffset
	copy(sig[:], compact[1:])
	return sig, recoveryCode&1 == 1, nil
}

// RecoverVerifier recovers the signing public key from (digest, r||s,
// recoveryOdd) and returns it in the 64-byte verifier form. A signature that
// does not parse, carries a high-S value after normalization wraps the flag,
// or does not name a curve point fails with InvalidSignature.
//
// Callers compare the result byte-exact against the vault's stored verifier
// key; a mismatch is MissingRequiredSignature, not InvalidSignature.
func RecoverVerifier(digest []byte, sig [SignatureLength]byte, recoveryOdd bool) ([VerifierKeyLength]byte, error) {
	var verifier [VerifierKeyLength]byte
	if len(digest) != 32 {
		return verifier, Errorf(CodeInvalidInput, "digest must be 32 bytes, got %d", len(digest))
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return verifier, Errorf(CodeInvalidSignature, "signature r is not a valid scalar")
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return verifier, Errorf(CodeInvalidSignature, "signature s is not a valid scalar")
	}
	// Canonicalize to low-S. Negating s flips which of the two candidate
	// keys the recovery id selects.
	if s.IsOverHalfOrder() {
		s.Negate()
		recoveryOdd = !recoveryOdd
	}

	compact := make([]byte, SignatureLength+1)
	compact[0] = compactSigMagicOffset
	if recoveryOdd {
		compact[0]++
	}
	rb := r.Bytes()
	sb := s.Bytes()
	copy(compact[1:33], rb[:])
	copy(compact[33:65], sb[:])

	pub, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return verifier, Errorf(CodeInvalidSignature, "recover signer: %v", err)
	}
	copy(verifier[:], pub.SerializeUncompressed()[1:])
	return verifier, nil
}

// VerifyWithdrawSignature recovers the signer and compares it byte-exact to
// the expected verifier key. Returns MissingRequiredSignature on mismatch.
func VerifyWithdrawSignature(digest []byte, sig [SignatureLength]byte, recoveryOdd bool, verifier [VerifierKeyLength]byte) error {
	recovered, err := RecoverVerifier(digest, sig, recoveryOdd)
	if err != nil {
		return err
	}
	if recovered != verifier {
		return ErrMissingRequiredSignature
	}
	return nil
}

// VerifierKeyFromPrivate returns the 64-byte verifier form of a key pair's
// public key.
func VerifierKeyFromPrivate(priv *secp256k1.PrivateKey) [VerifierKeyLength]byte {
	var verifier [VerifierKeyLength]byte
	copy(verifier[:], priv.PubKey().SerializeUncompressed()[1:])
	return verifier
}
