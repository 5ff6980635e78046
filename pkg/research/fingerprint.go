package research

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint computes the stable cache key for a Query: a SHA-256 hash
// over the normalized query text, the audience tuple, and the domain
// tuple (with frameworks/tags sorted so that ordering never affects the
// key). This is the CacheEntry.CacheKey and also the on-disk artifact
// file name stem.
func Fingerprint(q *Query) string {
	var b strings.Builder

	b.WriteString(normalizeText(q.Text))
	b.WriteByte('\x00')

	if q.Audience != nil {
		b.WriteString(q.Audience.Level)
		b.WriteByte('\x01')
		b.WriteString(q.Audience.Domain)
		b.WriteByte('\x01')
		b.WriteString(q.Audience.Format)
	}
	b.WriteByte('\x00')

	if q.Domain != nil {
		b.WriteString(q.Domain.Technology)
		b.WriteByte('\x01')
		b.WriteString(q.Domain.ProjectType)
		b.WriteByte('\x01')
		b.WriteString(strings.Join(q.Domain.sortedFrameworks(), ","))
		b.WriteByte('\x01')
		b.WriteString(strings.Join(q.Domain.sortedTags(), ","))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// normalizeText lowercases and collapses internal whitespace so that
// trivially different renderings of the same query fingerprint
// identically.
func normalizeText(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// ContentHash computes the SHA-256 content hash of an artifact body,
// used by the store to detect content-identical entries independent of
// their fingerprint. Mirrors the teacher's evidence recorder hashing
// discipline: cap at 1MB to avoid hashing unbounded bodies.
func ContentHash(content []byte) string {
	const maxHashSize = 1024 * 1024
	if len(content) == 0 {
		return ""
	}
	toHash := content
	if len(toHash) > maxHashSize {
		toHash = toHash[:maxHashSize]
	}
	sum := sha256.Sum256(toHash)
	return hex.EncodeToString(sum[:])
}
