package domhash

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// HashUnit returns the SHA-256 of unit as full hex, or, when prefixLen > 0,
// as the first prefixLen characters of its unpadded URL-safe base64 form.
func HashUnit(unit string, prefixLen int) string {
	sum := sha256.Sum256([]byte(unit))
	if prefixLen <= 0 {
		return hex.EncodeToString(sum[:])
	}
	enc := base64.RawURLEncoding.EncodeToString(sum[:])
	if prefixLen < len(enc) {
		return enc[:prefixLen]
	}
	return enc
}

// combine re-hashes the ordered unit hashes into a hex string fitted to
// length: truncated when longer, right-padded with '0' when shorter.
func combine(unitHashes []string, length int) string {
	sum := sha256.Sum256([]byte(strings.Join(unitHashes, "")))
	out := hex.EncodeToString(sum[:])
	if len(out) >= length {
		return out[:length]
	}
	return out + strings.Repeat("0", length-len(out))
}
