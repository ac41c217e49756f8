package solvbtc

import (
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func TestSignRecoverRoundTrip(t *testing.T) {
	for i := 0; i < 16; i++ {
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			t.Fatalf("GeneratePrivateKey: %v", err)
		}
		digest := testHash("round-trip")

		sig, odd, err := SignDigest(priv, digest[:])
		if err != nil {
			t.Fatalf("SignDigest: %v", err)
		}
		recovered, err := RecoverVerifier(digest[:], sig, odd)
		if err != nil {
			t.Fatalf("RecoverVerifier: %v", err)
		}
		if recovered != VerifierKeyFromPrivate(priv) {
			t.Fatalf("recovered key does not match signer (iteration %d)", i)
		}
	}
}

func TestSignDigestLowS(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	for i := 0; i < 32; i++ {
		digest := testHash("low-s-" + string(rune('a'+i)))
		sig, _, err := SignDigest(priv, digest[:])
		if err != nil {
			t.Fatalf("SignDigest: %v", err)
		}
		var s secp256k1.ModNScalar
		if overflow := s.SetByteSlice(sig[32:]); overflow {
			t.Fatal("s overflows the group order")
		}
		if s.IsOverHalfOrder() {
			t.Fatalf("signature s is not low-S (iteration %d)", i)
		}
	}
}

func TestSignDigestDeterministic(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	digest := testHash("deterministic")
	sig1, odd1, err := SignDigest(priv, digest[:])
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}
	sig2, odd2, err := SignDigest(priv, digest[:])
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}
	if sig1 != sig2 || odd1 != odd2 {
		t.Fatal("deterministic signing produced different signatures")
	}
}

func TestRecoverVerifierHighSNormalization(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	digest := testHash("high-s")
	sig, odd, err := SignDigest(priv, digest[:])
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}

	// Build the malleable high-S twin (r, n-s). Negating s flips the
	// parity of the implied R point, so the twin pairs with the flipped
	// recovery flag; canonicalization must map it back to the same signer.
	var s secp256k1.ModNScalar
	s.SetByteSlice(sig[32:])
	s.Negate()
	sb := s.Bytes()
	var highS [SignatureLength]byte
	copy(highS[:32], sig[:32])
	copy(highS[32:], sb[:])

	recovered, err := RecoverVerifier(digest[:], highS, !odd)
	if err != nil {
		t.Fatalf("RecoverVerifier(high-S): %v", err)
	}
	if recovered != VerifierKeyFromPrivate(priv) {
		t.Fatal("high-S normalization changed the recovered signer")
	}
}

func TestRecoverVerifierRejectsZeroScalars(t *testing.T) {
	digest := testHash("zero")
	var sig [SignatureLength]byte // r = s = 0
	if _, err := RecoverVerifier(digest[:], sig, false); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("want InvalidSignature, got %v", err)
	}
}

func TestVerifyWithdrawSignature(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	verifier := VerifierKeyFromPrivate(priv)
	digest := testHash("verify")

	sig, odd, err := SignDigest(priv, digest[:])
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}
	if err := VerifyWithdrawSignature(digest[:], sig, odd, verifier); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	// A signature over a different digest recovers a different key.
	other := testHash("other")
	if err := VerifyWithdrawSignature(other[:], sig, odd, verifier); !errors.Is(err, ErrMissingRequiredSignature) {
		t.Fatalf("want MissingRequiredSignature, got %v", err)
	}

	// A different signer's signature must not match the verifier.
	otherPriv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	forged, forgedOdd, err := SignDigest(otherPriv, digest[:])
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}
	if err := VerifyWithdrawSignature(digest[:], forged, forgedOdd, verifier); !errors.Is(err, ErrMissingRequiredSignature) {
		t.Fatalf("want MissingRequiredSignature, got %v", err)
	}
}

func TestSignDigestBadLength(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	if _, _, err := SignDigest(priv, make([]byte, 31)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want InvalidInput, got %v", err)
	}
	var sig [SignatureLength]byte
	if _, err := RecoverVerifier(make([]byte, 16), sig, false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want InvalidInput, got %v", err)
	}
}
