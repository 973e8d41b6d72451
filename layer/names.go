package layer

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var numberedSuffix = regexp.MustCompile(`^(.*?)\s*\((\d+)\)$`)

// UniqueName returns base if no other layer in the store uses it, otherwise
// base with a " (n)" suffix using the lowest free n. An existing numeric
// suffix on base is replaced rather than nested. Names compare after NFC
// normalization. self is excluded from the comparison.
func (s *Store) UniqueName(base string, self *Layer) string {
	taken := make(map[string]bool, len(s.layers))
	for _, l := range s.layers {
		if l == self {
			continue
		}
		taken[norm.NFC.String(l.Name)] = true
	}
	if !taken[norm.NFC.String(base)] {
		return base
	}
	stem := base
	if m := numberedSuffix.FindStringSubmatch(base); m != nil {
		stem = strings.TrimSpace(m[1])
	}
	for n := 1; ; n++ {
		candidate := stem + " (" + strconv.Itoa(n) + ")"
		if !taken[norm.NFC.String(candidate)] {
			return candidate
		}
	}
}

// Rename sets l.Name to a unique variant of name.
func (s *Store) Rename(l *Layer, name string) {
	l.Name = s.UniqueName(strings.TrimSpace(name), l)
}
