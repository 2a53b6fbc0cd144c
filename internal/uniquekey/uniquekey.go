// Package uniquekey computes partition keys for unique constraint records.
package uniquekey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ConstraintPK computes a hash-distributed partition key for a unique constraint.
// Scope is the value of the scoping field (e.g. the parent id for per-parent
// uniqueness) and is empty for collection-wide constraints. Hashing spreads
// constraints across partitions, eliminating hot partition risk.
func ConstraintPK(collection, scope, field, value string) string {
	data := fmt.Sprintf("%s#%s#%s#%s", collection, scope, field, value)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:16]) // 128-bit hash as hex
}
