// Package identity owns the user principal: registration, credential
// hashing, and lookup by email or id.
//
// Tokens live elsewhere (cmd/internal/auth/token); identity only answers
// "who is this user" and "does this password match".
package identity
