package main

import (
	"encoding/binary"
	"github.com/minio/sha256-simd"
	"github.com/p7r0x7/adminhash"
	"math/big"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const ints = uint32(5e4)

// crossCheck hashes inputs of every length up to a few blocks with both adminhash and
// sha256-simd, returning how many disagree.
func crossCheck() int {
	var bad int
	buf := make([]byte, 4<<10)
	fill(buf, 0xc0ffee)
	for i := 0; i <= len(buf); i++ {
		if adminhash.Sum256(buf[:i]) != sha256.Sum256(buf[:i]) {
			bad++
		}
	}
	return bad
}

// meanBias returns how far, on average over all 256 bit positions, the share of set bits strays
// from one half, as a percentage of one half.
func meanBias(hashes []*big.Int) float64 {
	const ln = adminhash.Size * 8
	tally := make([]int64, ln)
	for _, h := range hashes {
		for i := ln - 1; i >= 0; i-- {
			if h.Bit(i) == 1 {
				tally[i]++
			}
		}
	}
	half := int64(len(hashes) >> 1)
	var total int64
	for i := range tally {
		if d := tally[i] - half; d < 0 {
			total -= d
		} else {
			total += d
		}
	}
	return float64(total) / float64(ln) / float64(half) * 100
}

func integerBias() float64 {
	iBytes, hashes := make([]byte, 4), make([]*big.Int, 0, ints)
	for i := ints; i > 0; i-- {
		binary.BigEndian.PutUint32(iBytes, i)
		sum := adminhash.Sum256(iBytes)
		hashes = append(hashes, big.NewInt(0).SetBytes(sum[:]))
	}
	return meanBias(hashes)
}

func randomBias() float64 {
	rBytes, hashes := make([]byte, 1024), make([]*big.Int, 0, ints)
	for i := ints; i > 0; i-- {
		fill(rBytes, uint64(i))
		sum := adminhash.Sum256(rBytes)
		hashes = append(hashes, big.NewInt(0).SetBytes(sum[:]))
	}
	return meanBias(hashes)
}
