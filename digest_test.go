package solvbtc

import (
	"strconv"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

func TestSigningDigestStability(t *testing.T) {
	user := testKey("user")
	mint := testKey("mint")
	hash := testHash("a")

	d1 := SigningDigest(user, mint, hash, 500_000, 100_000_000)
	d2 := SigningDigest(user, mint, hash, 500_000, 100_000_000)
	if d1 != d2 {
		t.Fatal("equal inputs produced different digests")
	}
}

func TestSigningDigestFieldSensitivity(t *testing.T) {
	user := testKey("user")
	mint := testKey("mint")
	hash := testHash("a")
	base := SigningDigest(user, mint, hash, 500_000, 100_000_000)

	otherHash := testHash("b")
	cases := map[string][32]byte{
		"user":   SigningDigest(testKey("user2"), mint, hash, 500_000, 100_000_000),
		"mint":   SigningDigest(user, testKey("mint2"), hash, 500_000, 100_000_000),
		"hash":   SigningDigest(user, mint, otherHash, 500_000, 100_000_000),
		"shares": SigningDigest(user, mint, hash, 500_001, 100_000_000),
		"nav":    SigningDigest(user, mint, hash, 500_000, 100_000_001),
	}
	for field, digest := range cases {
		if digest == base {
			t.Errorf("changing %s did not change the digest", field)
		}
	}
}

func TestEIP191MessageFraming(t *testing.T) {
	user := testKey("user")
	mint := testKey("mint")
	hash := testHash("a")

	inner := user.String() + "\n" +
		mint.String() + "\n" +
		base58.Encode(hash[:]) + "\n" +
		"500000\n" +
		"100000000"
	want := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(inner)) + inner

	got := string(EIP191Message(user, mint, hash, 500_000, 100_000_000))
	if got != want {
		t.Fatalf("framed message mismatch:\n got %q\nwant %q", got, want)
	}
	if !strings.HasPrefix(got, "\x19Ethereum Signed Message:\n") {
		t.Fatal("missing personal-message prefix")
	}
}

func TestEIP191DigestDiffersFromRaw(t *testing.T) {
	user := testKey("user")
	mint := testKey("mint")
	hash := testHash("a")

	raw := SigningDigest(user, mint, hash, 1, 100_000_000)
	framed := EIP191Digest(user, mint, hash, 1, 100_000_000)
	if raw == framed {
		t.Fatal("raw and framed digests are identical")
	}
}

func TestDigestForDispatch(t *testing.T) {
	user := testKey("user")
	mint := testKey("mint")
	hash := testHash("a")

	raw, err := DigestFor(SigEncodingRaw, user, mint, hash, 2, 100_000_000)
	if err != nil {
		t.Fatalf("DigestFor(raw): %v", err)
	}
	if raw != SigningDigest(user, mint, hash, 2, 100_000_000) {
		t.Fatal("raw dispatch mismatch")
	}

	framed, err := DigestFor(SigEncodingEIP191, user, mint, hash, 2, 100_000_000)
	if err != nil {
		t.Fatalf("DigestFor(eip191): %v", err)
	}
	if framed != EIP191Digest(user, mint, hash, 2, 100_000_000) {
		t.Fatal("eip191 dispatch mismatch")
	}

	if _, err := DigestFor(SigEncoding(9), user, mint, hash, 2, 100_000_000); err == nil {
		t.Fatal("unknown encoding accepted")
	}
}

func TestParseSigEncoding(t *testing.T) {
	if enc, err := ParseSigEncoding("raw"); err != nil || enc != SigEncodingRaw {
		t.Fatalf("parse raw: %v %v", enc, err)
	}
	if enc, err := ParseSigEncoding("eip191"); err != nil || enc != SigEncodingEIP191 {
		t.Fatalf("parse eip191: %v %v", enc, err)
	}
	if _, err := ParseSigEncoding("der"); err == nil {
		t.Fatal("unknown encoding name accepted")
	}
}
