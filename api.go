package adminhash

import (
	"hash"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// This file contains a Go-specific API implementing the standard hash.Hash interface.

// Size is the length of a digest in bytes.
const Size = 32

// BlockSize is the number of message bytes consumed by each compression.
const BlockSize = 64

type digest struct {
	h     [8]uint32
	carry [BlockSize]byte
	nc    int    /* bytes held in carry */
	read  uint64 /* message bytes written since the last Reset */
}

// New returns a hash.Hash computing the SHA-256 checksum. Its Sum method may be called at any
// point without disturbing the running state.
func New() hash.Hash {
	d := &digest{}
	d.Reset()
	return d
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Reset() {
	d.h, d.nc, d.read = initial, 0, 0
	d.carry = [BlockSize]byte{}
}

func (d *digest) Write(buf []byte) (int, error) {
	count := len(buf)
	d.read += uint64(count)
	if d.nc > 0 {
		n := copy(d.carry[d.nc:], buf)
		d.nc += n
		buf = buf[n:]
		if d.nc < BlockSize {
			return count, nil
		}
		compress(&d.h, d.carry[:])
		d.nc = 0
	}

	if n := len(buf) &^ (BlockSize - 1); n > 0 {
		compress(&d.h, buf[:n])
		buf = buf[n:]
	}
	if len(buf) > 0 {
		d.nc = copy(d.carry[:], buf)
	}
	return count, nil
}

func (d *digest) Sum(buf []byte) []byte {
	/* A copy is finalized so that the caller may keep writing. */
	c := *d
	sum := c.finalize()
	return append(buf, sum[:]...)
}

func (d *digest) finalize() [Size]byte {
	bitLen := d.read << 3

	// Appends the 1 bit, then zeroes until 56 bytes mod 64, then the message length in bits.
	var pad [BlockSize + 8]byte
	pad[0] = 0x80
	n := 56 - int(d.read%BlockSize)
	if n <= 0 {
		n += BlockSize
	}
	for i := 0; i < 8; i++ {
		pad[n+i] = byte(bitLen >> (56 - 8*i))
	}
	_, _ = d.Write(pad[:n+8])
	if d.nc != 0 {
		panic("adminhash: padding left a partial block")
	}

	var sum [Size]byte
	for i, s := range d.h {
		sum[i<<2] = byte(s >> 24)
		sum[i<<2+1] = byte(s >> 16)
		sum[i<<2+2] = byte(s >> 8)
		sum[i<<2+3] = byte(s)
	}
	return sum
}

// Sum256 returns the SHA-256 digest of msg.
func Sum256(msg []byte) [Size]byte {
	var d digest
	d.Reset()
	_, _ = d.Write(msg)
	return d.finalize()
}

// Hex returns the 64-character lowercase hexadecimal digest of text encoded as UTF-8.
func Hex(text string) string { return HexWith(text, UTF8) }

// HexWith is Hex with an explicit text encoding.
func HexWith(text string, enc Encoding) string { return FormatDigest(Sum256(enc.Bytes(text))) }
