// Package match pairs remote test points with parsed XML test records using
// a fixed, ordered list of fuzzy string strategies.
package match

import "strings"

// NormalizeTitle derives the comparison form of a remote test point title:
// lower-case, with underscores and hyphens replaced by spaces. The XML side
// is compared through Record.CleanName and Record.FullName as-is.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return s
}
