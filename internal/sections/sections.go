// Package sections splits cover letter text into a fixed set of named sections.
package sections

import (
	"fmt"
	"strings"
)

// Name identifies one of the fixed cover letter sections.
type Name string

// Section names in document order.
const (
	Header       Name = "header"
	Introduction Name = "introduction"
	Body         Name = "body"
	Conclusion   Name = "conclusion"
	Signature    Name = "signature"
)

// Separator joins section values when a letter is reassembled.
const Separator = "\n\n"

var order = [...]Name{Header, Introduction, Body, Conclusion, Signature}

// Names returns the section names in document order.
func Names() []Name {
	names := make([]Name, len(order))
	copy(names, order[:])
	return names
}

// UnknownSectionError is returned when a string does not name a section.
type UnknownSectionError struct {
	Name string
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown section %q (want one of %s)", e.Name, strings.Join(nameStrings(), ", "))
}

// ParseName converts a string to a section Name.
func ParseName(s string) (Name, error) {
	candidate := Name(strings.ToLower(strings.TrimSpace(s)))
	for _, n := range order {
		if n == candidate {
			return n, nil
		}
	}
	return "", &UnknownSectionError{Name: s}
}

func nameStrings() []string {
	out := make([]string, len(order))
	for i, n := range order {
		out[i] = string(n)
	}
	return out
}

// Set holds the text of every section. The zero value is a valid all-empty set.
type Set struct {
	values [len(order)]string
}

func index(name Name) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

// Get returns the text of a section, or "" for an unknown name.
func (s Set) Get(name Name) string {
	if i := index(name); i >= 0 {
		return s.values[i]
	}
	return ""
}

// With returns a copy of the set with one section replaced.
// Unknown names leave the set unchanged.
func (s Set) With(name Name, text string) Set {
	if i := index(name); i >= 0 {
		s.values[i] = text
	}
	return s
}

// Map returns the sections as a name to text map with every name present.
func (s Set) Map() map[string]string {
	m := make(map[string]string, len(order))
	for i, n := range order {
		m[string(n)] = s.values[i]
	}
	return m
}

// FromMap builds a set from a name to text map. Unknown keys are ignored
// and missing keys stay empty.
func FromMap(m map[string]string) Set {
	var s Set
	for k, v := range m {
		if name, err := ParseName(k); err == nil {
			s = s.With(name, v)
		}
	}
	return s
}

// Join reassembles the letter: every section value in document order,
// separated by a blank line.
func (s Set) Join() string {
	return strings.Join(s.values[:], Separator)
}

// Empty reports whether every section is empty.
func (s Set) Empty() bool {
	for _, v := range s.values {
		if v != "" {
			return false
		}
	}
	return true
}
