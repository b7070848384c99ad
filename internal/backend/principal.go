package backend

import (
	"fmt"
	"regexp"
	"strings"
)

// Principal is an opaque identity reference scoping profiles, messages and
// ownership. The textual form is dash-separated lowercase base32-style
// groups, e.g. "w7x7r-cok77-xa".
type Principal string

var principalPattern = regexp.MustCompile(`^[a-z0-9]{1,10}(-[a-z0-9]{1,10})*$`)

// ParsePrincipal validates a principal's textual form. Malformed input is a
// boundary error to be surfaced inline, never a fault.
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("principal must not be empty")
	}
	if !principalPattern.MatchString(s) {
		return "", fmt.Errorf("invalid principal %q", s)
	}
	return Principal(s), nil
}

func (p Principal) String() string {
	return string(p)
}

// Short returns a display-friendly truncated form.
func (p Principal) Short() string {
	s := string(p)
	if len(s) <= 12 {
		return s
	}
	return s[:5] + "…" + s[len(s)-5:]
}
