package codec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Receipt is a single-use anti-replay token submitted with a vote.
type Receipt [32]byte

// String renders the receipt as 64 lowercase hex characters.
func (r Receipt) String() string {
	return hex.EncodeToString(r[:])
}

// Identifier returns the receipt as a contract argument.
func (r Receipt) Identifier() Identifier {
	return Identifier(r)
}

// ReceiptSource mints receipts.
type ReceiptSource interface {
	NewReceipt() (Receipt, error)
}

// RandomReceipts reads receipts from a cryptographic random source.
type RandomReceipts struct {
	Reader io.Reader
}

// NewReceipt returns 32 fresh random bytes.
func (s RandomReceipts) NewReceipt() (Receipt, error) {
	r := s.Reader
	if r == nil {
		r = rand.Reader
	}
	var out Receipt
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return Receipt{}, fmt.Errorf("read receipt entropy: %w", err)
	}
	return out, nil
}

// ParseReceipt parses the hex form produced by Receipt.String, with or without 0x.
func ParseReceipt(s string) (Receipt, error) {
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	if len(s) != hex.EncodedLen(len(Receipt{})) {
		return Receipt{}, fmt.Errorf("receipt must be %d hex characters", hex.EncodedLen(len(Receipt{})))
	}
	var out Receipt
	if _, err := hex.Decode(out[:], []byte(s)); err != nil {
		return Receipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	return out, nil
}

// VoterDigest is the lowercase hex SHA-256 of a voter's DID.
func VoterDigest(did string) string {
	sum := sha256.Sum256([]byte(did))
	return hex.EncodeToString(sum[:])
}
