package autotoc

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Family tags the generator a candidate came from.
type Family int

const (
	FamilyNumeral Family = iota
	FamilyPrefix
)

func (f Family) String() string {
	if f == FamilyPrefix {
		return "prefix"
	}
	return "numeral"
}

// Variant is the template shape within a family. Lower values are preferred
// when beauty ties.
type Variant int

const (
	VariantNumeralLiteral Variant = iota
	VariantNumeralRegex
	VariantNumeralLine
	VariantPrefixKeyword
	VariantPrefixExact
)

// candidateKey identifies a candidate for deduplication.
type candidateKey struct {
	family  Family
	variant Variant
	prefix  string
	suffix  string
}

// looseKey identifies a near-miss predicate. Candidates sharing one share
// the near-miss count.
type looseKey struct {
	family Family
	parser int
	prefix string
}

// Candidate is a scored hypothesis about what a heading line looks like.
type Candidate struct {
	Template string
	Family   Family
	Variant  Variant
	Priority int
	Beauty   float64

	key   candidateKey
	loose looseKey

	// numeral family
	parser numeralParser
	prefix string

	// prefix family
	anchor       string
	parentCount  int
	prefixBeauty float64
}

// candidateSet keeps the first candidate inserted under each key.
type candidateSet struct {
	order []*Candidate
	byKey map[candidateKey]*Candidate
}

func newCandidateSet() *candidateSet {
	return &candidateSet{byKey: make(map[candidateKey]*Candidate)}
}

func (s *candidateSet) add(c *Candidate) bool {
	if _, ok := s.byKey[c.key]; ok {
		return false
	}
	s.byKey[c.key] = c
	s.order = append(s.order, c)
	return true
}

// top returns up to n candidates of family f in rank order.
func (s *candidateSet) top(f Family, n int) []*Candidate {
	var out []*Candidate
	for _, c := range s.order {
		if c.Family == f {
			out = append(out, c)
		}
	}
	rank(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// rank orders by beauty descending, then priority, then simpler template.
func rank(cs []*Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Beauty != b.Beauty {
			return a.Beauty > b.Beauty
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if len(a.Template) != len(b.Template) {
			return len(a.Template) < len(b.Template)
		}
		return a.Template < b.Template
	})
}

func priority(v Variant, parserPriority int) int {
	return int(v)*10 + parserPriority
}

// literalTemplate renders text as a wildcard template. It fails when the
// text contains a wildcard character that cannot be expressed literally.
func literalTemplate(text string) (string, bool) {
	if strings.ContainsAny(text, "*?") {
		return "", false
	}
	return collapseSpace(text), true
}

// collapseSpace folds whitespace runs into single spaces.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// literalPattern quotes text for a regexp, letting any whitespace run match
// one or more whitespace characters.
func literalPattern(text string) string {
	var b strings.Builder
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteString(spaceClass + `+`)
			}
			space = true
			continue
		}
		space = false
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}

func sortedUniqueRunes(s string) []rune {
	seen := make(map[rune]bool)
	var out []rune
	for _, r := range s {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
