package main

import (
	"bytes"
	"github.com/p7r0x7/adminhash"
	"github.com/spf13/pflag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func plain(t *testing.T) {
	t.Helper()
	pString, pBase64, pQuiet, pNoCodes, mismatches = false, false, false, true, 0
	yell, purp, und, zero = "", "", "", ""
}

func TestSumTarget(t *testing.T) {
	plain(t)
	path := filepath.Join(t.TempDir(), "msg")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	sum, err := sumTarget(path, adminhash.Legacy)
	if err != nil || adminhash.FormatDigest(sum) != abc {
		t.Fatalf("sumTarget(file) = %x, %v", sum, err)
	}
	if _, err := sumTarget(filepath.Join(t.TempDir(), "missing"), adminhash.UTF8); err == nil {
		t.Fatal("sumTarget of a missing file should fail")
	}

	pString = true
	if sum, _ := sumTarget("密码", adminhash.Legacy); adminhash.FormatDigest(sum) != adminhash.HexWith("密码", adminhash.Legacy) {
		t.Fatalf("sumTarget(-s --legacy) = %x", sum)
	}
}

func TestLine(t *testing.T) {
	plain(t)
	sum := adminhash.Sum256([]byte("abc"))
	if got := line(sum, "dir/../msg", "", nil); got != abc+"  msg\n" {
		t.Errorf("line = %q", got)
	}

	pString = true
	if got := line(sum, "abc", " (1µs)", nil); got != abc+`  "abc" (1µs)`+"\n" {
		t.Errorf("line(-s -t) = %q", got)
	}

	other := adminhash.Sum256([]byte("abd"))
	if got := line(sum, "abc", "", &sum); !strings.HasPrefix(got, "OK  ") {
		t.Errorf("line(--check match) = %q", got)
	}
	if got := line(sum, "abc", "", &other); !strings.HasPrefix(got, "FAILED  ") || mismatches != 1 {
		t.Errorf("line(--check mismatch) = %q, %d mismatches", got, mismatches)
	}

	pQuiet, pBase64 = true, true
	if got := line(sum, "abc", "", nil); got != "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0=\n" {
		t.Errorf("line(--quiet -b) = %q", got)
	}
}

func TestLogin(t *testing.T) {
	plain(t)
	path := filepath.Join(t.TempDir(), "admins.yaml")
	doc := "accounts:\n  - username: root\n    role: finance\n" +
		"    password_sha256: f52fbd32b2b3b86ff88ef6c490628285f482af15ddcb29541f94bcf526a3f6c7\n"
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	var b bytes.Buffer
	if code := login(&b, path, "root", []string{"hunter2"}); code != success {
		t.Fatalf("login(hunter2) = %d: %s", code, b.String())
	}
	if want := "OK  root (finance): commissions, dashboard, deposits, withdrawals\n"; b.String() != want {
		t.Fatalf("login output = %q, want %q", b.String(), want)
	}

	b.Reset()
	if code := login(&b, path, "root", []string{"hunter2", "nope"}); code != failure ||
		!strings.Contains(b.String(), "FAILED  root") {
		t.Fatalf("login(nope) = %d: %s", code, b.String())
	}
	if code := login(&b, filepath.Join(t.TempDir(), "none.yaml"), "root", []string{"x"}); code != invalid {
		t.Fatalf("login with a missing directory = %d", code)
	}
}

// parseArgs resets every flag variable and parses args as the command line would be.
func parseArgs(t *testing.T, args ...string) {
	t.Helper()
	plain(t)
	pHelp, pBase64, pLegacy, pStrict, pString, pTime = false, false, false, false, false, false
	pCheck, pAccounts, pUser, warnings = "", "", "", 0
	pQuiet = true
	if err := pflag.CommandLine.Parse(args); err != nil {
		t.Fatalf("Parse(%q): %v", args, err)
	}
}

func TestProgram_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	msg, admins, missing := filepath.Join(dir, "msg"), filepath.Join(dir, "admins.yaml"), filepath.Join(dir, "missing")
	if err := os.WriteFile(msg, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	doc := "accounts:\n  - username: root\n    role: finance\n" +
		"    password_sha256: f52fbd32b2b3b86ff88ef6c490628285f482af15ddcb29541f94bcf526a3f6c7\n"
	if err := os.WriteFile(admins, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	for _, v := range []struct {
		name string
		args []string
		want int
	}{
		{"help", nil, success},
		{"string", []string{"-s", "abc"}, success},
		{"file", []string{msg}, success},
		{"check match", []string{"-s", "-c", abc, "abc"}, success},
		{"check file", []string{"--check", abc, msg}, success},
		{"check mismatch", []string{"-s", "-c", abc, "abd"}, failure},
		{"missing file", []string{msg, missing}, failure},
		{"bad check digest", []string{"-c", "zz", msg}, invalid},
		{"short check digest", []string{"-s", "-c", abc[:60], "abc"}, invalid},
		{"accounts without user", []string{"--accounts", admins, "-s", "hunter2"}, invalid},
		{"user without accounts", []string{"-u", "root", "-s", "hunter2"}, invalid},
		{"accounts without -s", []string{"--accounts", admins, "-u", "root", "hunter2"}, invalid},
		{"login", []string{"--accounts", admins, "-u", "root", "-s", "hunter2"}, success},
		{"login refused", []string{"--accounts", admins, "-u", "root", "-s", "hunter2", "nope"}, failure},
		{"unreadable accounts", []string{"--accounts", missing, "-u", "root", "-s", "x"}, invalid},
	} {
		parseArgs(t, v.args...)
		if got := program(); got != v.want {
			t.Errorf("%s: program() = %d, want %d", v.name, got, v.want)
		}
	}

	parseArgs(t, msg, missing, missing)
	if code := program(); code != failure || warnings != 2 {
		t.Fatalf("two missing files: program() = %d with %d warnings", code, warnings)
	}
	if mismatches != 0 {
		t.Fatalf("plain hashing counted %d mismatches", mismatches)
	}
}
