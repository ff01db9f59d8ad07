package etl

import "strings"

// SelectTables keeps the tables whose lowercased name contains any keyword.
// With no match it falls back to the first table, so a store with unknown
// naming is still tried.
func SelectTables(tables, keywords []string) []string {
	var out []string
	for _, t := range tables {
		lower := strings.ToLower(t)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				out = append(out, t)
				break
			}
		}
	}
	if len(out) == 0 && len(tables) > 0 {
		return tables[:1]
	}
	return out
}
