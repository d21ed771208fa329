package cache

import (
	"strings"
	"time"
)

// uniqueKeys trims keys and drops blanks and duplicates, keeping order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// sqlitePlaceholders returns "?,?,..." for n parameters.
func sqlitePlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// cutoff is the oldest updated_at still served, as unix seconds; 0 disables
// expiry.
func cutoff(maxAge time.Duration) int64 {
	if maxAge <= 0 {
		return 0
	}
	return time.Now().Add(-maxAge).Unix()
}
