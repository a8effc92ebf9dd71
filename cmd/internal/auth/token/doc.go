// Package token issues and verifies the signed identity tokens that bind
// a bearer credential to a user.
//
// Tokens are HS256 JWTs carrying {id, email}. By default no expiry claim is
// attached, so an issued token stays valid for the lifetime of the signing
// secret; an optional TTL turns on expiry enforcement.
package token
