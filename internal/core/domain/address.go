package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AddressLength is the byte length of Sui addresses and object ids.
const AddressLength = 32

// ErrInvalidAddress is returned for malformed addresses or object ids.
var ErrInvalidAddress = errors.New("invalid address")

// NormalizeAddress lower-cases a 0x-prefixed hex address and left-pads it to
// 32 bytes, so "0x2" becomes "0x000...002".
func NormalizeAddress(addr string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(addr))
	if !strings.HasPrefix(s, "0x") {
		return "", fmt.Errorf("%w: %q missing 0x prefix", ErrInvalidAddress, addr)
	}
	s = s[2:]
	if s == "" || len(s) > AddressLength*2 {
		return "", fmt.Errorf("%w: %q has bad length", ErrInvalidAddress, addr)
	}
	if _, err := hex.DecodeString(padHex(s)); err != nil {
		return "", fmt.Errorf("%w: %q is not hex", ErrInvalidAddress, addr)
	}
	return "0x" + strings.Repeat("0", AddressLength*2-len(s)) + s, nil
}

// AddressBytes decodes an address into its 32 raw bytes.
func AddressBytes(addr string) ([AddressLength]byte, error) {
	var out [AddressLength]byte
	norm, err := NormalizeAddress(addr)
	if err != nil {
		return out, err
	}
	b, _ := hex.DecodeString(norm[2:])
	copy(out[:], b)
	return out, nil
}

func padHex(s string) string {
	if len(s)%2 == 1 {
		return "0" + s
	}
	return s
}
