// Package checksum fingerprints file contents so the index can skip
// files that have not changed since the last sync.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex SHA-256 digest of data.
func Sum(data []byte) string {
	d := sha256.Sum256(data)
	return hex.EncodeToString(d[:])
}

// Matches reports whether data hashes to sum. An empty sum never matches.
func Matches(sum string, data []byte) bool {
	return sum != "" && sum == Sum(data)
}
