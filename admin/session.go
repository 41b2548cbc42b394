package admin

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Session is what an administrator keeps between visits. It proves nothing by itself and must
// pass Directory.Restore before being trusted.
type Session struct {
	Username  string    `yaml:"username"`
	Role      string    `yaml:"role"`
	IssuedAt  time.Time `yaml:"issued_at"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// WriteSession encodes s as YAML.
func WriteSession(w io.Writer, s Session) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&s); err != nil {
		return fmt.Errorf("admin: encoding session: %w", err)
	}
	return enc.Close()
}

// ReadSession decodes a session written by WriteSession.
func ReadSession(r io.Reader) (Session, error) {
	var s Session
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Session{}, fmt.Errorf("admin: decoding session: %w", err)
	}
	if s.Username == "" || s.ExpiresAt.IsZero() {
		return Session{}, errors.New("admin: decoding session: missing username or expiry")
	}
	return s, nil
}

// SaveSession writes s to path, readable only by its owner, replacing any earlier session.
func SaveSession(path string, s Session) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return fmt.Errorf("admin: saving session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err = tmp.Chmod(0600); err == nil {
		err = WriteSession(tmp, s)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		return fmt.Errorf("admin: saving session: %w", err)
	}
	return nil
}

// OpenSession reads the session saved at path.
func OpenSession(path string) (Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return Session{}, fmt.Errorf("admin: opening session: %w", err)
	}
	defer f.Close()
	return ReadSession(f)
}
