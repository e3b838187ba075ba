package store

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Fingerprint hashes the duplicate-identity tuple of a record. Two records
// with equal fingerprints are duplicates by definition; there is no fuzzy
// matching. md5 keeps the value byte-compatible with what Postgres md5()
// produces for the same tuple, so the in-process and SQL dedup passes
// group identically.
func Fingerprint(rec Record) string {
	tuple := strings.Join([]string{rec.Type, rec.Content, rec.Context, rec.Agent}, "|")
	sum := md5.Sum([]byte(tuple))
	return hex.EncodeToString(sum[:])
}
