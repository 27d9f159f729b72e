package figure

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies the shape of a figure. Values outside the known set are
// carried through unchanged so downstream stages can report them.
type Kind string

const (
	Square   Kind = "square"
	Circle   Kind = "circle"
	Triangle Kind = "triangle"
)

var knownKinds = []Kind{Square, Circle, Triangle}

// Kinds returns the sortable kinds in display order.
func Kinds() []Kind {
	out := make([]Kind, len(knownKinds))
	copy(out, knownKinds)
	return out
}

// ParseKind normalizes a drag identifier. It never fails; use Known to check
// whether the result has a bin and counter.
func ParseKind(raw string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(raw)))
}

// Known reports whether k is one of the three sortable kinds.
func (k Kind) Known() bool {
	for _, known := range knownKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

var titleCaser = cases.Title(language.English)

// Label returns a human-friendly name, e.g. "Triangle".
func (k Kind) Label() string {
	if k == "" {
		return "(none)"
	}
	return titleCaser.String(string(k))
}

// Glyph returns the single-rune symbol used by text renderers.
func (k Kind) Glyph() string {
	switch k {
	case Square:
		return "■"
	case Circle:
		return "●"
	case Triangle:
		return "▲"
	default:
		return "?"
	}
}
