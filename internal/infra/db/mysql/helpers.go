package mysql

import "strings"

// joinFlags flattens a flag set for storage in one varchar column.
func joinFlags(flags []string) string {
	return strings.Join(flags, ",")
}

// splitFlags restores a stored flag set; empty input yields an empty,
// non-nil slice so results marshal as [].
func splitFlags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
