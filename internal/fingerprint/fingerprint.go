// Package fingerprint derives the stable identity of a posting across runs.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Length of the hex digest kept. 96 bits is plenty for a seen-set that
// grows by a handful of entries per day, and it matches the format of
// existing state files, so old entries keep deduplicating after upgrades.
const hexLen = 24

// Sum computes the dedup key for a posting from its announcement ID, title,
// and resolved URL. Identical inputs always yield the same key.
func Sum(id, title, url string) string {
	h := sha256.Sum256([]byte(id + "|" + title + "|" + url))
	return hex.EncodeToString(h[:])[:hexLen]
}
