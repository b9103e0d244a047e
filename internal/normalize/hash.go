package normalize

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// BytesHash computes the hex-encoded SHA-256 of data.
func BytesHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// BatchHash combines per-file hashes into one batch digest. Entries are
// sorted by name so the digest does not depend on map iteration order.
func BatchHash(fileHashes map[string]string) string {
	names := make([]string, 0, len(fileHashes))
	for n := range fileHashes {
		names = append(names, n)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, n := range names {
		h.Write([]byte(n))
		h.Write([]byte{0})
		h.Write([]byte(fileHashes[n]))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// RowHash computes a stable SHA-256 over the canonical content of a record.
// Fields are sorted by key name then concatenated with null separators.
func RowHash(record map[string]any) []byte {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(ValueString(record[k])))
		h.Write([]byte{0})
	}
	return h.Sum(nil)
}
