// solv-verifier is the off-chain side of the withdrawal authorization flow:
// it derives program addresses, builds request digests in either supported
// encoding, and produces or checks the compact recoverable signatures the
// vault program settles against.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/slog"
	"github.com/gagliardetto/solana-go"
	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
)

var log = slog.Disabled

func usage() {
	fmt.Fprintf(os.Stderr, `usage: solv-verifier <command> [flags]

commands:
  keygen                       generate a verifier key pair
  derive   -kind <vault|minter-manager|pool-signer|request> ...
  digest   -user -mint -hash -shares -nav [-encoding raw|eip191]
  sign     -key <hex|@file> -user -mint -hash -shares -nav [-encoding ...]
  verify   -verifier <hex> -sig <hex> [-odd] -user -mint -hash -shares -nav [-encoding ...]
`)
	os.Exit(2)
}

func main() {
	backend := slog.NewBackend(os.Stderr)
	log = backend.Logger("SOLV")
	log.SetLevel(slog.LevelInfo)

	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "keygen":
		err = keygen()
	case "derive":
		err = derive(os.Args[2:])
	case "digest":
		err = digest(os.Args[2:])
	case "sign":
		err = sign(os.Args[2:])
	case "verify":
		err = verify(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Errorf("%s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func keygen() error {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return err
	}
	verifier := solvbtc.VerifierKeyFromPrivate(priv)
	fmt.Printf("private:  %x\n", priv.Serialize())
	fmt.Printf("verifier: %x\n", verifier[:])
	return nil
}

// requestFields holds the flags shared by digest, sign and verify.
type requestFields struct {
	user     solana.PublicKey
	mint     solana.PublicKey
	hash     [solvbtc.RequestHashLength]byte
	shares   uint64
	nav      uint64
	encoding solvbtc.SigEncoding
}

func addRequestFlags(fs *flag.FlagSet) (user, mint, hash, encoding *string, shares, nav *uint64) {
	user = fs.String("user", "", "requester address (base58)")
	mint = fs.String("mint", "", "withdraw asset mint (base58)")
	hash = fs.String("hash", "", "32-byte request hash (hex)")
	shares = fs.Uint64("shares", 0, "share amount locked by the request")
	nav = fs.Uint64("nav", 0, "NAV snapshot of the request")
	encoding = fs.String("encoding", "raw", "digest encoding: raw or eip191")
	return
}

func parseRequestFlags(user, mint, hash, encoding string, shares, nav uint64) (requestFields, error) {
	var rf requestFields
	var err error
	if rf.user, err = solana.PublicKeyFromBase58(user); err != nil {
		return rf, fmt.Errorf("bad -user: %w", err)
	}
	if rf.mint, err = solana.PublicKeyFromBase58(mint); err != nil {
		return rf, fmt.Errorf("bad -mint: %w", err)
	}
	raw, err := hex.DecodeString(hash)
	if err != nil {
		return rf, fmt.Errorf("bad -hash: %w", err)
	}
	if len(raw) != solvbtc.RequestHashLength {
		return rf, fmt.Errorf("bad -hash: want %d bytes, got %d", solvbtc.RequestHashLength, len(raw))
	}
	copy(rf.hash[:], raw)
	if rf.encoding, err = solvbtc.ParseSigEncoding(encoding); err != nil {
		return rf, err
	}
	rf.shares = shares
	rf.nav = nav
	return rf, nil
}

func derive(args []string) error {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	kind := fs.String("kind", "vault", "address kind: vault, minter-manager, pool-signer or request")
	mint := fs.String("mint", "", "mint address (base58)")
	user := fs.String("user", "", "requester address (base58, request kind only)")
	hash := fs.String("hash", "", "32-byte request hash (hex, request kind only)")
	fs.Parse(args)

	mintKey, err := solana.PublicKeyFromBase58(*mint)
	if err != nil {
		return fmt.Errorf("bad -mint: %w", err)
	}

	switch *kind {
	case "vault":
		addr, bump, err := solvbtc.DeriveVaultAddress(mintKey)
		if err != nil {
			return err
		}
		fmt.Printf("%s bump=%d\n", addr, bump)
	case "minter-manager":
		vault, _, err := solvbtc.DeriveVaultAddress(mintKey)
		if err != nil {
			return err
		}
		addr, bump, err := solvbtc.DeriveMinterManagerAddress(vault)
		if err != nil {
			return err
		}
		fmt.Printf("%s bump=%d\n", addr, bump)
	case "pool-signer":
		addr, bump, err := solvbtc.DerivePoolSignerAddress(mintKey)
		if err != nil {
			return err
		}
		fmt.Printf("%s bump=%d\n", addr, bump)
	case "request":
		userKey, err := solana.PublicKeyFromBase58(*user)
		if err != nil {
			return fmt.Errorf("bad -user: %w", err)
		}
		raw, err := hex.DecodeString(*hash)
		if err != nil {
			return fmt.Errorf("bad -hash: %w", err)
		}
		vault, _, err := solvbtc.DeriveVaultAddress(mintKey)
		if err != nil {
			return err
		}
		addr, bump, err := solvbtc.DeriveWithdrawRequestAddress(vault, mintKey, userKey, raw)
		if err != nil {
			return err
		}
		fmt.Printf("%s bump=%d\n", addr, bump)
	default:
		return fmt.Errorf("unknown -kind %q", *kind)
	}
	return nil
}

func digest(args []string) error {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	user, mint, hash, encoding, shares, nav := addRequestFlags(fs)
	fs.Parse(args)

	rf, err := parseRequestFlags(*user, *mint, *hash, *encoding, *shares, *nav)
	if err != nil {
		return err
	}
	if rf.encoding == solvbtc.SigEncodingEIP191 {
		msg := solvbtc.EIP191Message(rf.user, rf.mint, rf.hash, rf.shares, rf.nav)
		fmt.Printf("message: %q\n", string(msg))
	}
	d, err := solvbtc.DigestFor(rf.encoding, rf.user, rf.mint, rf.hash, rf.shares, rf.nav)
	if err != nil {
		return err
	}
	fmt.Printf("digest: %x\n", d[:])
	return nil
}

func sign(args []string) error {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	key := fs.String("key", "", "32-byte private key (hex, or @file containing hex)")
	user, mint, hash, encoding, shares, nav := addRequestFlags(fs)
	fs.Parse(args)

	priv, err := loadPrivateKey(*key)
	if err != nil {
		return err
	}
	rf, err := parseRequestFlags(*user, *mint, *hash, *encoding, *shares, *nav)
	if err != nil {
		return err
	}
	d, err := solvbtc.DigestFor(rf.encoding, rf.user, rf.mint, rf.hash, rf.shares, rf.nav)
	if err != nil {
		return err
	}
	sig, odd, err := solvbtc.SignDigest(priv, d[:])
	if err != nil {
		return err
	}
	fmt.Printf("signature: %x\n", sig[:])
	fmt.Printf("recovery_odd: %t\n", odd)
	return nil
}

func verify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	verifierHex := fs.String("verifier", "", "64-byte verifier key (hex)")
	sigHex := fs.String("sig", "", "64-byte signature (hex)")
	odd := fs.Bool("odd", false, "recovery id is odd")
	user, mint, hash, encoding, shares, nav := addRequestFlags(fs)
	fs.Parse(args)

	rawVerifier, err := hex.DecodeString(*verifierHex)
	if err != nil || len(rawVerifier) != solvbtc.VerifierKeyLength {
		return fmt.Errorf("bad -verifier: want %d hex bytes", solvbtc.VerifierKeyLength)
	}
	rawSig, err := hex.DecodeString(*sigHex)
	if err != nil || len(rawSig) != solvbtc.SignatureLength {
		return fmt.Errorf("bad -sig: want %d hex bytes", solvbtc.SignatureLength)
	}
	var verifier [solvbtc.VerifierKeyLength]byte
	var sig [solvbtc.SignatureLength]byte
	copy(verifier[:], rawVerifier)
	copy(sig[:], rawSig)

	rf, err := parseRequestFlags(*user, *mint, *hash, *encoding, *shares, *nav)
	if err != nil {
		return err
	}
	d, err := solvbtc.DigestFor(rf.encoding, rf.user, rf.mint, rf.hash, rf.shares, rf.nav)
	if err != nil {
		return err
	}
	if err := solvbtc.VerifyWithdrawSignature(d[:], sig, *odd, verifier); err != nil {
		return err
	}
	fmt.Println("signature valid")
	return nil
}

func loadPrivateKey(spec string) (*secp256k1.PrivateKey, error) {
	if spec == "" {
		return nil, fmt.Errorf("missing -key")
	}
	keyHex := spec
	if strings.HasPrefix(spec, "@") {
		raw, err := os.ReadFile(spec[1:])
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		keyHex = strings.TrimSpace(string(raw))
	}
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("bad private key hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("bad private key: want 32 bytes, got %d", len(raw))
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}
