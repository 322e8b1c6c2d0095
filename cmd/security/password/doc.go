// Package password provides password hashing and verification for uniblog.
//
// It implements Argon2id hashing using a PHC-like encoded string format:
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
//
// Hash strings are treated as untrusted input during Verify and are validated
// accordingly; verification refuses hashes whose parameters exceed reasonable
// bounds to keep resource usage predictable.
package password
