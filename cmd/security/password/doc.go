// Package password hashes and verifies user passwords with bcrypt.
//
// Verify never returns an error: a malformed or foreign hash simply does not
// match. Hasher holds no mutable state and is safe for concurrent use.
package password
