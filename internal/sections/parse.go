package sections

import "strings"

// markerFor returns the section a line opens, if it contains a marker phrase.
// Rules are checked in precedence order.
func markerFor(line string) (Name, bool) {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "dear") && strings.Contains(lower, "hiring manager"):
		return Introduction, true
	case strings.Contains(lower, "sincerely") || strings.Contains(lower, "best regards"):
		return Conclusion, true
	case strings.Contains(lower, "thank you") && strings.Contains(lower, "consideration"):
		return Signature, true
	}
	return "", false
}

// Parse splits text into sections by scanning for marker phrases.
//
// Lines are trimmed. A marker line flushes the lines collected so far into
// the current section and starts the section it names; the marker line
// itself belongs to the new section. A flush overwrites whatever the target
// section held, so a repeated marker keeps only the last run of lines.
// Text without markers lands entirely in Header. Parse never fails.
func Parse(text string) Set {
	var (
		set     Set
		current = Header
		buf     []string
	)

	flush := func() {
		if len(buf) > 0 {
			set = set.With(current, strings.Join(buf, "\n"))
			buf = buf[:0]
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if next, ok := markerFor(line); ok {
			flush()
			current = next
		}
		buf = append(buf, line)
	}
	flush()

	return set
}

// Degenerate reports whether text contains no marker phrase at all, in
// which case Parse puts everything in Header.
func Degenerate(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if _, ok := markerFor(strings.TrimSpace(line)); ok {
			return false
		}
	}
	return true
}

// Assignment records which section a non-empty line was placed in.
type Assignment struct {
	Line    string
	Section Name
}

// Assignments lists every non-empty line of the parsed set with its section,
// in document order.
func (s Set) Assignments() []Assignment {
	var out []Assignment
	for _, name := range order {
		for _, line := range strings.Split(s.Get(name), "\n") {
			if line != "" {
				out = append(out, Assignment{Line: line, Section: name})
			}
		}
	}
	return out
}
