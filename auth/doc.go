// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth checks the admin login.

There is one admin account, taken from configuration:

	creds := auth.NewCredentials(cfg)
	if err := creds.Check(username, password); err != nil {
		// auth.ErrInvalidCredentials
	}

Login is stateless. A successful check issues no session or token.

# Password Hashes

A bcrypt hash can be configured instead of a plaintext password:

	hash, err := auth.HashPassword("s3cret")
	// admin_password_hash: $2a$10$...

The voting-server hash-password command prints one.
*/
package auth
