// Package admin verifies dashboard administrators against stored password digests and decides
// which dashboard paths a logged-in administrator may open.
package admin

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/p7r0x7/adminhash"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// DefaultTTL is how long a session lasts when the directory file does not say.
const DefaultTTL = 12 * time.Hour

var (
	ErrInvalidCredentials = errors.New("admin: invalid username or password")
	ErrDisabled           = errors.New("admin: account is disabled")
	ErrSessionExpired     = errors.New("admin: session has expired")
	ErrRevoked            = errors.New("admin: session has been revoked")
)

// Account is one administrator as stored in a directory file.
type Account struct {
	Username string `yaml:"username"`
	Role     string `yaml:"role"`
	Digest   string `yaml:"password_sha256"`
	Encoding string `yaml:"encoding,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// NewAccount hashes password as UTF-8 into an account record.
func NewAccount(username, password, role string) Account {
	return Account{
		Username: normalize(username),
		Role:     role,
		Digest:   adminhash.Hex(password),
	}
}

type file struct {
	SessionTTL  string              `yaml:"session_ttl,omitempty"`
	Accounts    []Account           `yaml:"accounts"`
	Permissions map[string][]string `yaml:"permissions,omitempty"`
	Roles       map[string][]string `yaml:"roles,omitempty"`
}

type entry struct {
	Account
	sum     [adminhash.Size]byte
	enc     adminhash.Encoding
	revoked time.Time /* sessions issued at or before this are refused */
}

// Directory is the set of administrators and the role table they are checked against. It is
// safe for concurrent use.
type Directory struct {
	table    Table
	ttl      time.Duration
	custom   bool /* table came from the file rather than DefaultTable */
	mu       sync.RWMutex
	accounts map[string]*entry
	rehashed []string
}

// NewDirectory builds a directory from accounts and a role table.
func NewDirectory(t Table, ttl time.Duration, accounts ...Account) (*Directory, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("admin: session ttl %v is not positive", ttl)
	}
	d := &Directory{table: t, ttl: ttl, accounts: make(map[string]*entry, len(accounts))}
	for _, a := range accounts {
		if err := d.add(a); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Directory) add(a Account) error {
	a.Username = normalize(a.Username)
	if a.Username == "" {
		return errors.New("admin: account without a username")
	}
	if _, ok := d.accounts[a.Username]; ok {
		return fmt.Errorf("admin: duplicate account %q", a.Username)
	}
	if _, ok := d.table.Roles[a.Role]; !ok {
		return fmt.Errorf("admin: account %q has unknown role %q", a.Username, a.Role)
	}
	sum, err := adminhash.ParseDigest(a.Digest)
	if err != nil {
		return fmt.Errorf("admin: account %q: %w", a.Username, err)
	}
	enc, err := adminhash.ParseEncoding(a.Encoding)
	if err != nil {
		return fmt.Errorf("admin: account %q: %w", a.Username, err)
	}
	d.accounts[a.Username] = &entry{Account: a, sum: sum, enc: enc}
	return nil
}

// LoadDirectory reads a single YAML directory document; a stream holding more than one is
// refused. Roles and permissions it names replace the built-in table as a whole.
func LoadDirectory(r io.Reader) (*Directory, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("admin: decoding directory: %w", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New("admin: decoding directory: more than one YAML document")
	}

	t, custom := DefaultTable(), false
	if f.Roles != nil || f.Permissions != nil {
		t, custom = Table{Permissions: f.Permissions, Roles: f.Roles}, true
	}
	ttl := DefaultTTL
	if f.SessionTTL != "" {
		var err error
		if ttl, err = time.ParseDuration(f.SessionTTL); err != nil {
			return nil, fmt.Errorf("admin: session_ttl: %w", err)
		}
	}
	d, err := NewDirectory(t, ttl, f.Accounts...)
	if err != nil {
		return nil, err
	}
	d.custom = custom
	return d, nil
}

// LoadDirectoryFile is LoadDirectory on the file at path.
func LoadDirectoryFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("admin: opening directory: %w", err)
	}
	defer f.Close()
	return LoadDirectory(f)
}

// Marshal renders the directory, including any digests upgraded by Login, as YAML.
func (d *Directory) Marshal() ([]byte, error) {
	d.mu.RLock()
	f := file{SessionTTL: d.ttl.String(), Accounts: make([]Account, 0, len(d.accounts))}
	for _, e := range d.accounts {
		f.Accounts = append(f.Accounts, e.Account)
	}
	d.mu.RUnlock()
	sort.Slice(f.Accounts, func(i, j int) bool { return f.Accounts[i].Username < f.Accounts[j].Username })
	if d.custom {
		f.Permissions, f.Roles = d.table.Permissions, d.table.Roles
	}

	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return nil, fmt.Errorf("admin: encoding directory: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("admin: encoding directory: %w", err)
	}
	return b.Bytes(), nil
}

// Login checks password against the stored digest of username and opens a session. Unknown
// usernames and wrong passwords both fail with ErrInvalidCredentials. An account stored with
// the legacy text encoding is re-hashed as UTF-8 once its password has been confirmed.
func (d *Directory) Login(username, password string, now time.Time) (Session, error) {
	username = normalize(username)
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.accounts[username]
	if !ok {
		/* Hashing anyway keeps unknown names from answering faster. */
		_ = adminhash.Equal(adminhash.Sum256([]byte(password)), [adminhash.Size]byte{})
		return Session{}, ErrInvalidCredentials
	}
	if !adminhash.Equal(adminhash.Sum256(e.enc.Bytes(password)), e.sum) {
		return Session{}, ErrInvalidCredentials
	}
	if e.Disabled {
		return Session{}, fmt.Errorf("%w: %s", ErrDisabled, username)
	}

	if e.enc == adminhash.Legacy {
		e.sum = adminhash.Sum256(adminhash.UTF8.Bytes(password))
		e.enc, e.Digest, e.Encoding = adminhash.UTF8, adminhash.FormatDigest(e.sum), ""
		d.rehashed = append(d.rehashed, username)
	}
	return Session{
		Username:  username,
		Role:      e.Role,
		IssuedAt:  now.UTC(),
		ExpiresAt: now.Add(d.ttl).UTC(),
	}, nil
}

// Rehashed lists, in order, the accounts whose legacy digests Login has replaced.
func (d *Directory) Rehashed() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.rehashed...)
}

// Restore revalidates a saved session against the directory as it is now.
func (d *Directory) Restore(s Session, now time.Time) (Session, error) {
	switch {
	case !now.Before(s.ExpiresAt):
		return Session{}, ErrSessionExpired
	case s.IssuedAt.IsZero() || s.IssuedAt.After(now):
		return Session{}, fmt.Errorf("%w: issued_at %v is not in the past", ErrSessionExpired, s.IssuedAt)
	case s.ExpiresAt.After(s.IssuedAt.Add(d.ttl)):
		/* A session may not outlive the ttl it would have been issued under. */
		return Session{}, fmt.Errorf("%w: lifetime exceeds %v", ErrSessionExpired, d.ttl)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.accounts[normalize(s.Username)]
	switch {
	case !ok:
		return Session{}, fmt.Errorf("%w: account %q no longer exists", ErrRevoked, s.Username)
	case e.Disabled:
		return Session{}, fmt.Errorf("%w: account %q is disabled", ErrRevoked, s.Username)
	case e.Role != s.Role:
		return Session{}, fmt.Errorf("%w: role of %q changed to %q", ErrRevoked, s.Username, e.Role)
	case !e.revoked.IsZero() && !s.IssuedAt.After(e.revoked):
		return Session{}, fmt.Errorf("%w: sessions of %q were revoked", ErrRevoked, s.Username)
	}
	return s, nil
}

// Revoke refuses every session of username issued at or before now. It reports whether the
// account exists.
func (d *Directory) Revoke(username string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.accounts[normalize(username)]
	if ok {
		e.revoked = now.UTC()
	}
	return ok
}

// Permissions returns the permission ids granted to role.
func (d *Directory) Permissions(role string) []string { return d.table.Grants(role) }

// Allowed reports whether the holder of s may open path.
func (d *Directory) Allowed(s Session, path string) bool { return d.table.Allows(s.Role, path) }

func normalize(username string) string { return norm.NFC.String(strings.TrimSpace(username)) }
