package adminhash

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// FormatDigest renders sum as 64 lowercase hexadecimal characters.
func FormatDigest(sum [Size]byte) string { return hex.EncodeToString(sum[:]) }

// ParseDigest parses a 64-character hexadecimal digest of either case.
func ParseDigest(s string) ([Size]byte, error) {
	var sum [Size]byte
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return sum, fmt.Errorf("adminhash: parsing digest: %w", err)
	}
	if len(decoded) != Size {
		return sum, fmt.Errorf("adminhash: digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(sum[:], decoded)
	return sum, nil
}

// Equal reports whether a and b are the same digest, in time independent of their contents.
func Equal(a, b [Size]byte) bool { return subtle.ConstantTimeCompare(a[:], b[:]) == 1 }
