// Package token provides identifier generation and comparison utilities.
//
// Identifiers are drawn uniformly from a fixed alphabet using crypto/rand,
// so every character position is independent and unbiased.
//
// Identifier Format:
//
//   - Alphabet: lowercase ASCII letters and digits ([a-z0-9])
//   - Length: caller supplied; session tokens use 20 characters
//
// Security:
//
//   - Uses crypto/rand.Int for rejection-free uniform sampling
//   - Constant-time comparison for secrets and digests
package token
