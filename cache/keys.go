package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
)

// keyVersion tags every derived key. Bump it whenever a snapshot payload
// shape changes: new builds then read and write under fresh keys instead of
// choking on entries written by the old shape.
const keyVersion = "v2"

// KeyFor derives a stable cache key from the given parts. Parts are trimmed
// and lower-cased so equivalent inputs land on the same entry, then escaped
// so the join separator cannot appear inside a part, and finally hashed so
// arbitrarily long input still yields a short fixed-length key.
func KeyFor(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = url.QueryEscape(strings.ToLower(strings.TrimSpace(p)))
	}
	sum := sha1.Sum([]byte(strings.Join(norm, "|")))
	return keyVersion + ":" + hex.EncodeToString(sum[:])
}
