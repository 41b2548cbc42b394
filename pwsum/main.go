package main

import (
	"encoding/base64"
	"errors"
	. "fmt"
	"github.com/p7r0x7/adminhash"
	"github.com/p7r0x7/adminhash/admin"
	"github.com/p7r0x7/vainpath"
	. "github.com/spf13/pflag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const n = "\n"
const success, failure, invalid = 0, 1, 2

var warnings, mismatches = 0, 0

func main() {
	Parse()
	os.Exit(program())
}

// help prints a usage menu. To consistently correctly render this menu in most terminal windows,
// its content should be no wider than 80 columns.
func help() {
	origin, err := os.Executable()
	if err != nil {
		origin = "pwsum" /* Default binary name */
	} else {
		origin = filepath.Base(origin)
	}
	name := vainpath.Trim(origin, "…", 12)
	spaces := strings.Repeat(" ", utf8.RuneCountInString(name)+3)
	Fprint(os.Stderr, yell, "SHA-256 digests of admin passwords, strings, and files.", zero, n+n+
		"Usage:"+n+
		"  ", name, " [-h]"+n,
		spaces, "[-bt] [-c <hex>] [--quiet|no-codes] [--strict] -|PATH..."+n,
		spaces, "[-bt] [-c <hex>] [--legacy] [--quiet|no-codes] [--strict] -s STRING..."+n,
		spaces, "--accounts FILE -u NAME -s PASSWORD..."+n+n+
			"Options:"+n)
	PrintDefaults()
	name = vainpath.Trim(origin, "…", 15)
	Fprint(os.Stderr, n+"Order of arguments placed after `", name, "` does not matter unless `--` is"+
		n+"specified, signaling the end of parsed flags. Long-form flag equivalents are"+
		n+"above. `-` is treated as a reference to ", os.Stdin.Name(), " on this platform."+n)
}

// program hashes every argument, or checks every argument as a password when --accounts is
// given, and returns the process exit code.
func program() int {
	if pHelp || NArg() == 0 {
		help()
		return success
	}

	enc := adminhash.UTF8
	if pLegacy {
		enc = adminhash.Legacy
	}

	if pAccounts != "" || pUser != "" {
		if pAccounts == "" || pUser == "" || !pString {
			Fprint(os.Stderr, purp, "--accounts and --user go together, and need -s.", zero, n)
			return invalid
		}
		return login(os.Stdout, pAccounts, pUser, Args())
	}

	var want *[adminhash.Size]byte
	if pCheck != "" {
		sum, err := adminhash.ParseDigest(pCheck)
		if err != nil {
			Fprint(os.Stderr, purp, err, zero, n)
			return invalid
		}
		want = &sum
	}

	for _, target := range Args() {
		start, delta := time.Now(), ""
		sum, err := sumTarget(target, enc)
		if err != nil {
			warn(err)
			continue
		}
		if pTime {
			d := time.Since(start)
			if d.Microseconds() > 99 {
				d = d.Truncate(10 * time.Microsecond)
			}
			delta = " (" + d.String() + ")"
		}
		Print(line(sum, target, delta, want))
	}

	if !pQuiet {
		if warnings == 1 {
			Fprint(os.Stderr, "1 ", purp, "target is a directory or is otherwise inaccessible.", zero, n)
		} else if warnings > 1 {
			Fprint(os.Stderr, warnings, " ", purp, "targets are directories or are otherwise inaccessible.", zero, n)
		}
		if mismatches > 0 {
			Fprint(os.Stderr, mismatches, " ", purp, "of the computed digests did NOT match.", zero, n)
		}
	}
	if warnings > 0 || mismatches > 0 {
		return failure
	}
	return success
}

// sumTarget hashes target as a string under -s, as STDIN when it is `-`, and as a file path
// otherwise. Only strings are subject to enc; files and STDIN are hashed byte-for-byte.
func sumTarget(target string, enc adminhash.Encoding) ([adminhash.Size]byte, error) {
	var sum [adminhash.Size]byte
	digest := adminhash.New()
	switch {
	case pString:
		_, _ = digest.Write(enc.Bytes(target))
	case target == "-" || target == os.Stdin.Name():
		if _, err := io.Copy(digest, os.Stdin); err != nil {
			return sum, err
		}
		go os.Stdin.Close() /* STDIN should not be reused. */
	default:
		file, err := os.Open(target)
		if err != nil {
			return sum, err
		}
		_, err = io.Copy(digest, file)
		go file.Close()
		if err != nil {
			return sum, err
		}
	}
	copy(sum[:], digest.Sum(nil))
	return sum, nil
}

// line renders one output line for sum; under --check it also tallies mismatches.
func line(sum [adminhash.Size]byte, target, delta string, want *[adminhash.Size]byte) string {
	str := adminhash.FormatDigest(sum)
	if pBase64 {
		str = base64.StdEncoding.EncodeToString(sum[:])
	}

	var verdict string
	if want != nil {
		verdict = "OK"
		if !adminhash.Equal(sum, *want) {
			verdict = "FAILED"
			mismatches++
		}
	}

	switch {
	case pQuiet && want != nil:
		return verdict + n
	case pQuiet:
		return str + n
	}

	if pString {
		target = zero + `  "` + target + `"`
	} else if pNoCodes {
		target = `  ` + filepath.Clean(target)
	} else {
		target = zero + `  ` + und + vainpath.Simplify(target)
	}
	if want != nil {
		return Sprint(yell, verdict, target, zero, delta, n)
	}
	return Sprint(yell, str, target, zero, delta, n)
}

// login tries every password against the account named user, printing the permissions each
// successful attempt would grant.
func login(w io.Writer, accounts, user string, passwords []string) int {
	dir, err := admin.LoadDirectoryFile(accounts)
	if err != nil {
		Fprint(os.Stderr, purp, err, zero, n)
		return invalid
	}

	code := success
	for _, password := range passwords {
		s, err := dir.Login(user, password, time.Now())
		switch {
		case errors.Is(err, admin.ErrInvalidCredentials), errors.Is(err, admin.ErrDisabled):
			Fprint(w, yell, "FAILED", zero, "  ", user, ": ", err, n)
			code = failure
			continue
		case err != nil:
			warn(err)
			code = failure
			continue
		}
		Fprint(w, yell, "OK", zero, "  ", s.Username, " (", s.Role, "): ",
			strings.Join(dir.Permissions(s.Role), ", "), n)
	}
	if upgraded := dir.Rehashed(); len(upgraded) > 0 && !pQuiet {
		Fprint(os.Stderr, purp, "legacy digest would be re-hashed as UTF-8 for: ", zero,
			strings.Join(upgraded, ", "), n)
	}
	return code
}

func warn(err ...interface{}) {
	if pStrict {
		panic(err)
	}
	warnings++
}
