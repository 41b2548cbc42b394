package adminhash

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Encoding selects how text is turned into message bytes before hashing.
type Encoding uint8

const (
	// UTF8 hashes the standard UTF-8 bytes of the text.
	UTF8 Encoding = iota
	// Legacy reproduces the dashboard's original browser-side encoder, which emits every UTF-16
	// code unit at or above 0x80 as exactly two bytes. It agrees with UTF8 below U+0800 only, and
	// exists so that digests stored by that encoder can still be verified. The lead byte of a unit
	// at or above U+0800 is assumed to be truncated to 8 bits.
	Legacy
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf8"
	case Legacy:
		return "legacy"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// ParseEncoding accepts "utf8", "utf-8", or "legacy" in any case; the empty string means UTF8.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf8", "utf-8":
		return UTF8, nil
	case "legacy":
		return Legacy, nil
	}
	return 0, fmt.Errorf("adminhash: unknown text encoding %q", s)
}

// Bytes returns the message bytes of text under e.
func (e Encoding) Bytes(text string) []byte {
	if e != Legacy {
		return []byte(text)
	}
	units := utf16.Encode([]rune(text)) /* Invalid UTF-8 becomes U+FFFD here. */
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		if u < 0x80 {
			out = append(out, byte(u))
			continue
		}
		/* The lead byte loses every bit above the eighth for units at or above 0x800. */
		out = append(out, byte(0xc0|u>>6), byte(0x80|u&0x3f))
	}
	return out
}
