package ingest

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// contentHash hashes a file's full source text, used for manifest-based
// staleness detection (distinct from each node's own snippet hash, which
// is scoped to a declaration's span).
func contentHash(source []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(source))
}
