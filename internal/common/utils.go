package common

import (
	"strconv"
	"strings"
)

// HasAny returns true if s contains any of the substrings, ignoring case.
func HasAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// MaxInt returns the largest integer appearing as a whitespace separated
// token in s, e.g. "5 to 10 mph" -> 10. ok is false when s holds none.
func MaxInt(s string) (n int, ok bool) {
	for _, tok := range strings.Fields(s) {
		v, err := strconv.Atoi(strings.Trim(tok, ",."))
		if err != nil {
			continue
		}
		if !ok || v > n {
			n, ok = v, true
		}
	}
	return n, ok
}
