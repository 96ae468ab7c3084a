// Package auth issues and validates JWT access and refresh tokens, hashes
// and verifies passwords with bcrypt, and provides the Directory that
// authenticates users and resolves their roles.
package auth
