package main

import (
	stdsha "crypto/sha256"
	. "fmt"
	"github.com/aead/chacha20/chacha"
	"github.com/dterei/gotsc"
	"github.com/minio/sha256-simd"
	"github.com/p7r0x7/adminhash"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/sys/cpu"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var sizes = [...]struct {
	label string
	n     int
}{{"64B", 64}, {"512K", 512 << 10}, {"64M", 64 << 20}, {"1G", 1 << 30}}

var calltime = gotsc.TSCOverhead()
var sink [32]byte

type alg struct {
	name string
	sum  func(msg []byte)
}

var algs = []alg{
	{"github.com/p7r0x7/adminhash", func(msg []byte) { sink = adminhash.Sum256(msg) }},
	{"github.com/minio/sha256-simd", func(msg []byte) { sink = sha256.Sum256(msg) }},
	{"crypto/sha256", func(msg []byte) { sink = stdsha.Sum256(msg) }},
	{"github.com/zeebo/blake3", func(msg []byte) { sink = blake3.Sum256(msg) }},
	{"github.com/zeebo/xxh3 (128-bit)", func(msg []byte) {
		u := xxh3.Hash128(msg)
		sink[0] = byte(u.Hi ^ u.Lo)
	}},
}

/* One row of figures per algorithm, one column per entry of sizes. */
type figures struct{ mbps, cpb, usage [len(sizes)]float64 }

// fill overwrites buf with ChaCha20 keystream so that every run measures the same inputs.
func fill(buf []byte, seed uint64) {
	var key [32]byte
	var nonce [24]byte
	for i := 0; i < 8; i++ {
		nonce[i] = byte(seed >> (8 * i))
	}
	for i := range buf {
		buf[i] = 0
	}
	chacha.XORKeyStream(buf, buf, nonce[:], key[:], 20)
}

// sampleTSC polls the time-stamp counter in the background until stop is called, which returns
// the mean cycles per second observed, or 0 where no TSC is available.
func sampleTSC() (stop func() float64) {
	if calltime == 0 {
		return func() float64 { return 0 }
	}
	var total, polls uint64
	done, finished := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(finished)
		for {
			tsc1 := gotsc.BenchStart()
			time.Sleep(time.Millisecond)
			total += gotsc.BenchEnd() - tsc1 - calltime
			polls++
			select {
			case <-done:
				return
			case <-time.After(9 * time.Millisecond):
			}
		}
	}()
	return func() float64 {
		close(done)
		<-finished
		if polls == 0 {
			return 0
		}
		return float64(total) / float64(polls) * 1000
	}
}

// measure benchmarks a over msg, returning MB/s, cycles per byte, and bytes allocated per op.
func measure(a alg, msg []byte) (mbps, cpb, usage float64) {
	stop := sampleTSC()
	r := testing.Benchmark(func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		for i := b.N; i > 0; i-- {
			a.sum(msg)
		}
	})
	hz := stop()

	bps := float64(r.Bytes*int64(r.N)) / r.T.Seconds()
	if hz > 0 {
		cpb = hz / bps
	}
	return bps / 1e6, cpb, float64(r.AllocedBytesPerOp())
}

/* Each input is allocated once and shared by every algorithm. */
func benchAll() []figures {
	rows := make([]figures, len(algs))
	for i, size := range sizes {
		msg := make([]byte, size.n)
		fill(msg, uint64(i))
		for j, a := range algs {
			rows[j].mbps[i], rows[j].cpb[i], rows[j].usage[i] = measure(a, msg)
		}
	}
	return rows
}

/* Decimal places by magnitude, so that every column stays eight wide. */
var places = [...]struct {
	upTo float64
	prec int
}{{1e1, 6}, {1e2, 5}, {1e3, 4}, {1e4, 3}, {1e5, 2}, {1e6, 1}}

func fmtFloat(v float64) string {
	whole := float64(int64(v)) == v
	switch {
	case v > 1e8 || v < 1e-6 && !whole:
		return Sprintf("%8.3g", v)
	case !whole:
		for _, p := range places {
			if v <= p.upTo {
				return Sprintf("%8.*f", p.prec, v)
			}
		}
	}
	return Sprintf("%8.f", v)
}

func fmtFloats(f ...float64) string {
	var b strings.Builder
	for _, v := range f {
		b.WriteString("  ")
		b.WriteString(fmtFloat(v))
	}
	return b.String()
}

func features() string {
	switch runtime.GOARCH {
	case "amd64", "386":
		return Sprintf("sse4.1=%v avx2=%v bmi2=%v", cpu.X86.HasSSE41, cpu.X86.HasAVX2, cpu.X86.HasBMI2)
	case "arm64":
		return Sprintf("sha2=%v", cpu.ARM64.HasSHA2)
	}
	return "none detected"
}

func main() {
	Printf("Running Statz on %d CPUs!\n%s/%s (%s)\n\n",
		runtime.NumCPU(), runtime.GOOS, runtime.GOARCH, features())
	t := time.Now()

	if n := crossCheck(); n > 0 {
		Printf("%d inputs hashed differently from github.com/minio/sha256-simd.\n", n)
		os.Exit(1)
	}
	Printf("Integer input Monobit test:  %5.3f%%\n", integerBias())
	Printf("Random input Monobit test:   %5.3f%%\n\n", randomBias())

	header := "    "
	for _, size := range sizes {
		header += Sprintf("  %8s", size.label)
	}
	Println(header)
	for i, row := range benchAll() {
		Println(algs[i].name)
		Println("Speed " + fmtFloats(row.mbps[:]...) + "   MB/s")
		if calltime > 0 {
			Println("      " + fmtFloats(row.cpb[:]...) + "   cpb")
		}
		Println("Usage " + fmtFloats(row.usage[:]...) + "   B/op\n")
	}

	Println("Finished in " + time.Since(t).Truncate(time.Millisecond).String() + ".")
}
