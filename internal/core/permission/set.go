package permission

import "sort"

// Set is a set of permission codes. The zero value is an empty set ready for
// reads; use NewSet before calling Add.
type Set map[Code]struct{}

func NewSet(codes ...Code) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// FromStrings builds a set from raw codes as stored.
func FromStrings(codes []string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[Code(c)] = struct{}{}
	}
	return s
}

func (s Set) Add(c Code) { s[c] = struct{}{} }

func (s Set) Contains(c Code) bool {
	_, ok := s[c]
	return ok
}

func (s Set) Len() int { return len(s) }

// Union returns a new set holding the members of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for c := range s {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// Slice returns the codes sorted.
func (s Set) Slice() []Code {
	out := make([]Code, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the codes sorted as plain strings.
func (s Set) Strings() []string {
	codes := s.Slice()
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
