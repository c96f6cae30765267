package access

import "strings"

// Allowlist is the set of principals always granted admin status
type Allowlist struct {
	principals map[string]struct{}
}

// NewAllowlist builds an allowlist; blank entries are ignored
func NewAllowlist(principals []string) Allowlist {
	set := make(map[string]struct{}, len(principals))
	for _, p := range principals {
		p = strings.TrimSpace(p)
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return Allowlist{principals: set}
}

// Contains reports whether principal is allowlisted. The empty principal never is.
func (a Allowlist) Contains(principal string) bool {
	if principal == "" {
		return false
	}
	_, ok := a.principals[principal]
	return ok
}

// Len returns the number of allowlisted principals
func (a Allowlist) Len() int {
	return len(a.principals)
}
