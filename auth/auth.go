// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/voting-server/cliparse"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is the single admin account. When PasswordHash is set it
// takes precedence over Password.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

func NewCredentials(cfg cliparse.Config) Credentials {
	return Credentials{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
	}
}

// Check validates a login attempt. Comparisons are constant-time.
func (c Credentials) Check(username, password string) error {
	userOK := hmac.Equal([]byte(username), []byte(c.Username))

	var passOK bool
	if c.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	} else {
		passOK = hmac.Equal([]byte(password), []byte(c.Password))
	}

	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for admin_password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
