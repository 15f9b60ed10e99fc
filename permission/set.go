package permission

import "sort"

// Set is a set of permission codes.
//
// The zero value is an empty set ready for reads; use [NewSet] or [Set.Add] before writes.
type Set map[string]struct{}

// NewSet returns a set holding codes. Empty codes are skipped.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, code := range codes {
		s.Add(code)
	}
	return s
}

// Add inserts code. Empty codes are ignored.
func (s Set) Add(code string) {
	if code == "" {
		return
	}
	s[code] = struct{}{}
}

// Has reports whether code is a member of the set.
func (s Set) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Len returns the number of codes.
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set holding the codes of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for code := range s {
		out[code] = struct{}{}
	}
	for code := range other {
		out[code] = struct{}{}
	}
	return out
}

// Sorted returns the codes in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for code := range s {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	return s.Union(nil)
}
