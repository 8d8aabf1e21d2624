package autotoc

import (
	"slices"
	"strings"
)

type suffixNode struct {
	path    []string
	members []int
}

// numeralCandidates groups numeral matches by parser and exact prefix and
// synthesizes templates for every surviving (prefix, suffix) group.
func (d *Detector) numeralCandidates(a *article, set *candidateSet) {
	p := d.params
	for _, parser := range parsers {
		groups := make(map[string][]NumberMatch)
		for i := range a.lines {
			l := &a.lines[i]
			if len(l.Tokens) == 0 {
				continue
			}
			for _, m := range parser.Extract(l.Joined(), p.MaxMatchesPerLine) {
				m.Cursor = l.TitleCursor()
				m.Title = l.Text
				m.line = i
				groups[m.Prefix] = append(groups[m.Prefix], m)
			}
		}
		for _, prefix := range sortedKeys(groups) {
			ms := groups[prefix]
			if len(ms) < p.MinContent {
				continue
			}
			for _, n := range expandSuffixes(ms, p.MinContent, p.MaxSuffixDepth) {
				d.emitNumeral(a, set, parser, prefix, ms, n)
			}
		}
	}
}

// expandSuffixes walks the suffix trie of a prefix group breadth first. A
// node is emitted unless one of its children keeps every member, in which
// case the child supersedes it.
func expandSuffixes(ms []NumberMatch, minContent, maxDepth int) []suffixNode {
	edges := make([][]string, len(ms))
	all := make([]int, len(ms))
	for i, m := range ms {
		edges[i] = mergeSpace(Tokenize(m.Suffix, 0))
		all[i] = i
	}

	var out []suffixNode
	queue := []suffixNode{{members: all}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		depth := len(n.path)
		children := make(map[string][]int)
		if depth < maxDepth {
			for _, i := range n.members {
				if depth < len(edges[i]) {
					e := edges[i][depth]
					children[e] = append(children[e], i)
				}
			}
		}
		superseded := false
		for _, e := range sortedKeys(children) {
			c := children[e]
			if len(c) < minContent {
				continue
			}
			if len(c) == len(n.members) {
				superseded = true
			}
			queue = append(queue, suffixNode{path: append(slices.Clip(n.path), e), members: c})
		}
		if !superseded {
			out = append(out, n)
		}
	}
	return out
}

func (d *Detector) emitNumeral(a *article, set *candidateSet, parser numeralParser, prefix string, ms []NumberMatch, n suffixNode) {
	p := d.params
	suffix := strings.Join(n.path, "")

	values := make([]int, len(n.members))
	titles := make([]string, len(n.members))
	cursors := make([]int, len(n.members))
	numerals := make([]string, len(n.members))
	for k, i := range n.members {
		values[k] = ms[i].Value
		titles[k] = ms[i].Title
		cursors[k] = ms[i].Cursor
		numerals[k] = ms[i].Numeral
	}

	score := numeralScore(values, len(values), p.Numeral)
	if score < p.FirstStageMin {
		d.log().Debug("numeral candidate rejected", "stage", "sequence", "parser", parser.Name(), "prefix", prefix, "suffix", suffix, "beauty", score)
		return
	}
	score *= titleScore(titles, p.Title)
	if score < p.FirstStageMin {
		d.log().Debug("numeral candidate rejected", "stage", "title", "parser", parser.Name(), "prefix", prefix, "suffix", suffix, "beauty", score)
		return
	}
	score *= sizeScore(cursors, a.size, p.Size)
	if score < p.FirstStageMin {
		d.log().Debug("numeral candidate rejected", "stage", "size", "parser", parser.Name(), "prefix", prefix, "suffix", suffix, "beauty", score)
		return
	}

	loose := looseKey{family: FamilyNumeral, parser: parser.ID(), prefix: prefix}
	mk := func(tpl string, v Variant) *Candidate {
		return &Candidate{
			Template: tpl,
			Family:   FamilyNumeral,
			Variant:  v,
			Priority: priority(v, parser.Priority()),
			Beauty:   score,
			key:      candidateKey{family: FamilyNumeral, variant: v, prefix: prefix, suffix: suffix},
			loose:    loose,
			parser:   parser,
			prefix:   prefix,
		}
	}

	lp, okp := literalTemplate(prefix)
	ls, oks := literalTemplate(suffix)
	if okp && oks && (prefix != "" || suffix != "") {
		set.add(mk(lp+"*"+ls, VariantNumeralLiteral))
	}

	class := "[" + charClass(strings.Join(numerals, "")) + "]+"
	set.add(mk(`/^`+spaceClass+`*`+literalPattern(prefix)+class+literalPattern(suffix)+`/`, VariantNumeralRegex))

	if prefix == "" && suffix == "" {
		set.add(mk(`/^`+spaceClass+`*`+class+spaceClass+`*$/`, VariantNumeralLine))
	}
}

// mergeSpace attaches whitespace tokens to the token that follows them and
// drops trailing whitespace.
func mergeSpace(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	pending := ""
	for _, t := range tokens {
		if isSpace(t) {
			pending += t
			continue
		}
		out = append(out, pending+t)
		pending = ""
	}
	return out
}
