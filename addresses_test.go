package solvbtc

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
)

// testKey derives a deterministic pubkey from a label so test vectors are
// reproducible across runs.
func testKey(label string) solana.PublicKey {
	sum := sha256.Sum256([]byte("solvbtc-test-" + label))
	return solana.PublicKeyFromBytes(sum[:])
}

func testHash(label string) [RequestHashLength]byte {
	return sha256.Sum256([]byte("solvbtc-test-hash-" + label))
}

func TestDeriveVaultAddressDeterministic(t *testing.T) {
	mint := testKey("mint-a")
	addr1, bump1, err := DeriveVaultAddress(mint)
	if err != nil {
		t.Fatalf("DeriveVaultAddress: %v", err)
	}
	addr2, bump2, err := DeriveVaultAddress(mint)
	if err != nil {
		t.Fatalf("DeriveVaultAddress: %v", err)
	}
	if addr1 != addr2 || bump1 != bump2 {
		t.Fatalf("derivation not deterministic: %s/%d vs %s/%d", addr1, bump1, addr2, bump2)
	}

	other, _, err := DeriveVaultAddress(testKey("mint-b"))
	if err != nil {
		t.Fatalf("DeriveVaultAddress: %v", err)
	}
	if addr1 == other {
		t.Fatalf("different mints derived the same vault address %s", addr1)
	}
}

func TestDeriveDomainsDistinct(t *testing.T) {
	mint := testKey("mint-a")
	vault, _, err := DeriveVaultAddress(mint)
	if err != nil {
		t.Fatalf("DeriveVaultAddress: %v", err)
	}
	manager, _, err := DeriveMinterManagerAddress(vault)
	if err != nil {
		t.Fatalf("DeriveMinterManagerAddress: %v", err)
	}
	pool, _, err := DerivePoolSignerAddress(mint)
	if err != nil {
		t.Fatalf("DerivePoolSignerAddress: %v", err)
	}
	hash := testHash("a")
	request, _, err := DeriveWithdrawRequestAddress(vault, mint, testKey("user"), hash[:])
	if err != nil {
		t.Fatalf("DeriveWithdrawRequestAddress: %v", err)
	}

	seen := map[solana.PublicKey]string{vault: "vault"}
	for addr, name := range map[solana.PublicKey]string{manager: "minter manager", pool: "pool signer", request: "withdraw request"} {
		if prev, ok := seen[addr]; ok {
			t.Fatalf("%s address collides with %s: %s", name, prev, addr)
		}
		seen[addr] = name
	}
}

func TestDeriveWithdrawRequestAddressSensitivity(t *testing.T) {
	vault := testKey("vault")
	mint := testKey("mint")
	user := testKey("user")
	hash := testHash("a")

	base, _, err := DeriveWithdrawRequestAddress(vault, mint, user, hash[:])
	if err != nil {
		t.Fatalf("DeriveWithdrawRequestAddress: %v", err)
	}

	otherHash := testHash("b")
	variants := []struct {
		name                string
		vault, mint, user   solana.PublicKey
		hash                [RequestHashLength]byte
	}{
		{"vault", testKey("vault2"), mint, user, hash},
		{"mint", vault, testKey("mint2"), user, hash},
		{"user", vault, mint, testKey("user2"), hash},
		{"hash", vault, mint, user, otherHash},
	}
	for _, v := range variants {
		addr, _, err := DeriveWithdrawRequestAddress(v.vault, v.mint, v.user, v.hash[:])
		if err != nil {
			t.Fatalf("DeriveWithdrawRequestAddress(%s): %v", v.name, err)
		}
		if addr == base {
			t.Errorf("changing %s did not change the derived address", v.name)
		}
	}
}

func TestDeriveWithdrawRequestAddressBadHash(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		_, _, err := DeriveWithdrawRequestAddress(testKey("vault"), testKey("mint"), testKey("user"), make([]byte, n))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("hash length %d: want InvalidInput, got %v", n, err)
		}
	}
}

func TestNewRequestHash(t *testing.T) {
	h1, err := NewRequestHash()
	if err != nil {
		t.Fatalf("NewRequestHash: %v", err)
	}
	h2, err := NewRequestHash()
	if err != nil {
		t.Fatalf("NewRequestHash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two request hashes are identical")
	}
}
