package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex is the cache key for an image: stable across re-sends of the
// same photo bytes.
func SHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
