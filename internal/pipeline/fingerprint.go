package pipeline

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
)

// CacheKey derives a stable cache key from the product name and a fingerprint
// of the truth record. Identical truth records always produce identical keys.
func CacheKey(productName string, truth ProductTruth) string {
	h := fnv.New64a()
	// Field order in the struct is fixed, so the marshalled form is canonical.
	b, _ := json.Marshal(truth)
	h.Write(b)

	name := strings.Join(strings.Fields(strings.ToLower(productName)), "_")
	return fmt.Sprintf("prompt_%s_%016x", name, h.Sum64())
}
