// Package token issues and verifies the service's bearer tokens.
//
// Tokens are HS256 JWTs carrying issuer, subject (user UUID), issued-at and
// expiry. Verification is stateless: signature, issuer and expiry are checked
// against the configured secret and the caller-supplied clock.
package token
