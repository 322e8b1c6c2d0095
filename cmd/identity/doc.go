// Package identity owns the user directory for uniblog.
//
// It defines the Principal record, the Directory persistence boundary, and
// Postgres and in-memory implementations. Email addresses are unique
// case-insensitively: a normalized form (trimmed, lower-cased) is stored next
// to the display form and carries the unique constraint, so concurrent
// registrations of "A@b.com" and "a@b.com" cannot both succeed.
//
// Password hashing is not performed here; callers store the encoded hash they
// obtained from cmd/security/password.
package identity
