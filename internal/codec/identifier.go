// Package codec converts textual entity codes to and from the contract's
// bytes32 identifiers.
package codec

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// IdentifierSize is the width of a contract identifier.
const IdentifierSize = 32

// ErrEncodingTooLong is returned when a value does not fit into an identifier.
var ErrEncodingTooLong = errors.New("encoding exceeds 32 bytes")

// ErrAmbiguousCode is returned for a code whose identifier decodes to a
// different code, such as "0x41" (decodes to "A") or a code ending in NUL.
var ErrAmbiguousCode = errors.New("code does not round-trip")

// Identifier is a zero-padded contract key.
type Identifier [IdentifierSize]byte

// Hex renders the identifier as 0x-prefixed lowercase hex.
func (id Identifier) Hex() string {
	return hexutil.Encode(id[:])
}

// String returns the decoded code.
func (id Identifier) String() string {
	return Decode(id)
}

// Encode converts a code to an identifier. A value carrying a 0x prefix and a
// valid even-length hex body is taken as raw identifier bytes; anything else is
// encoded as UTF-8. Both forms are right-padded with zero bytes.
//
// Codes that Decode would not return unchanged are rejected with
// ErrAmbiguousCode, so no two accepted codes share an identifier.
func Encode(value string) (Identifier, error) {
	raw, ok := rawHex(value)
	if !ok {
		raw = []byte(value)
	}
	id, err := EncodeBytes(raw)
	if err != nil {
		return Identifier{}, fmt.Errorf("encode %q: %w", value, err)
	}
	if Decode(id) != value {
		return Identifier{}, fmt.Errorf("encode %q: %w", value, ErrAmbiguousCode)
	}
	return id, nil
}

// EncodeBytes right-pads b to an identifier.
func EncodeBytes(b []byte) (Identifier, error) {
	var id Identifier
	if len(b) > IdentifierSize {
		return id, fmt.Errorf("%d bytes: %w", len(b), ErrEncodingTooLong)
	}
	copy(id[:], b)
	return id, nil
}

// Decode strips trailing zero bytes and returns the remainder as text. Bytes
// that are not valid UTF-8, or text that would itself parse as 0x hex, come
// back in canonical 0x-prefixed lowercase hex.
func Decode(id Identifier) string {
	end := len(id)
	for end > 0 && id[end-1] == 0 {
		end--
	}
	b := id[:end]
	if utf8.Valid(b) {
		s := string(b)
		if _, ok := rawHex(s); !ok {
			return s
		}
	}
	return hexutil.Encode(b)
}

func rawHex(value string) ([]byte, bool) {
	raw, err := hexutil.Decode(value)
	if err != nil {
		return nil, false
	}
	return raw, true
}
