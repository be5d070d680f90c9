// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/voting-server/cliparse"
)

func TestCheck_Plaintext(t *testing.T) {
	creds := NewCredentials(cliparse.DefaultConfig())

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "admin", "admin123", false},
		{"wrong password", "admin", "admin124", true},
		{"wrong username", "root", "admin123", true},
		{"empty", "", "", true},
		{"case sensitive", "Admin", "admin123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := creds.Check(tt.username, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrInvalidCredentials {
				t.Errorf("Check() error = %v, want %v", err, ErrInvalidCredentials)
			}
		})
	}
}

func TestCheck_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}

	creds := Credentials{Username: "admin", Password: "admin123", PasswordHash: string(hash)}

	if err := creds.Check("admin", "s3cret"); err != nil {
		t.Errorf("Check() with hashed password error = %v", err)
	}
	// the plaintext password is ignored once a hash is configured
	if err := creds.Check("admin", "admin123"); err != ErrInvalidCredentials {
		t.Errorf("Check() error = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("HashPassword() = %q, want a bcrypt hash", hash)
	}

	creds := Credentials{Username: "admin", PasswordHash: hash}
	if err := creds.Check("admin", "s3cret"); err != nil {
		t.Errorf("Check() with generated hash error = %v", err)
	}

	if _, err := HashPassword(""); err == nil {
		t.Error("HashPassword(\"\") expected error")
	}
}

func BenchmarkCheck_Plaintext(b *testing.B) {
	creds := Credentials{Username: "admin", Password: "admin123"}
	for i := 0; i < b.N; i++ {
		creds.Check("admin", "admin123")
	}
}
