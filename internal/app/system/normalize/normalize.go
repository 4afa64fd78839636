// Package normalize canonicalizes user-entered strings before they are
// compared or stored.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and keeps case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Slug trims and lowercases a group slug taken from a URL or form.
func Slug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username returns the case-insensitive key used for username lookups.
func Username(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Identifiers splits a newline-separated list of usernames or e-mail
// addresses, dropping blanks and duplicates while keeping input order.
func Identifiers(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' || r == ',' }) {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		key := strings.ToLower(id)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, id)
	}
	return out
}

// Keywords splits a comma-separated keyword list into trimmed, unique,
// lowercase terms.
func Keywords(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		k := strings.ToLower(strings.TrimSpace(part))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
