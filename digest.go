package solvbtc

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
)

// eip191Prefix is the standard personal-message framing prefix. The framed
// message is prefix + decimal(len(msg)) + msg.
const eip191Prefix = "\x19Ethereum Signed Message:\n"

// SigEncoding selects which of the two supported digest encodings a
// withdrawal authorization uses. The choice is made when a request is
// created and persisted with it; settlement never infers the encoding.
type SigEncoding uint8

const (
	// SigEncodingRaw is the binary digest: SHA-256 over the concatenated
	// request fields.
	SigEncodingRaw SigEncoding = iota
	// SigEncodingEIP191 is the human-signable form: keccak-256 over the
	// personal-message-framed base58 text of the same fields.
	SigEncodingEIP191
)

func (e SigEncoding) String() string {
	switch e {
	case SigEncodingRaw:
		return "raw"
	case SigEncodingEIP191:
		return "eip191"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// ParseSigEncoding parses the textual encoding names used on the CLI.
func ParseSigEncoding(s string) (SigEncoding, error) {
	switch s {
	case "raw":
		return SigEncodingRaw, nil
	case "eip191":
		return SigEncodingEIP191, nil
	}
	return 0, Errorf(CodeInvalidInput, "unknown signature encoding %q", s)
}

// SigningDigest computes the raw withdrawal-authorization digest:
//
//	sha256(user(32) || withdrawMint(32) || hash(32) || shares u64 LE || nav u64 LE)
//
// Field order and widths are fixed; any deviation breaks verification
// against the deployed program.
func SigningDigest(user, withdrawMint solana.PublicKey, hash [RequestHashLength]byte, shares, nav uint64) [32]byte {
	var buf [112]byte
	copy(buf[0:32], user.Bytes())
	copy(buf[32:64], withdrawMint.Bytes())
	copy(buf[64:96], hash[:])
	binary.LittleEndian.PutUint64(buf[96:104], shares)
	binary.LittleEndian.PutUint64(buf[104:112], nav)
	return sha256.Sum256(buf[:])
}

// EIP191Message builds the personal-message-framed text a human-facing
// verifier signs. The inner message is the newline-joined base58/decimal
// rendering of the request fields.
func EIP191Message(user, withdrawMint solana.PublicKey, hash [RequestHashLength]byte, shares, nav uint64) []byte {
	msg := user.String() + "\n" +
		withdrawMint.String() + "\n" +
		base58.Encode(hash[:]) + "\n" +
		strconv.FormatUint(shares, 10) + "\n" +
		strconv.FormatUint(nav, 10)
	framed := eip191Prefix + strconv.Itoa(len(msg)) + msg
	return []byte(framed)
}

// EIP191Digest computes keccak-256 over the framed personal message.
func EIP191Digest(user, withdrawMint solana.PublicKey, hash [RequestHashLength]byte, shares, nav uint64) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(EIP191Message(user, withdrawMint, hash, shares, nav))
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// DigestFor computes the signing digest for the given encoding.
func DigestFor(enc SigEncoding, user, withdrawMint solana.PublicKey, hash [RequestHashLength]byte, shares, nav uint64) ([32]byte, error) {
	switch enc {
	case SigEncodingRaw:
		return SigningDigest(user, withdrawMint, hash, shares, nav), nil
	case SigEncodingEIP191:
		return EIP191Digest(user, withdrawMint, hash, shares, nav), nil
	}
	return [32]byte{}, Errorf(CodeInvalidInput, "unknown signature encoding %d", enc)
}
