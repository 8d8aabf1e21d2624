package autotoc

import (
	"math"
	"strings"
	"unicode"
)

type prefixNode struct {
	path        []string
	members     []int // line indices
	parentCount int
}

// prefixCandidates walks, for every frequent leading symbol, the trie of
// leading token sequences and emits a candidate at each node that cannot be
// extended without dropping below the anchor's ratio target.
func (d *Detector) prefixCandidates(a *article, set *candidateSet) {
	p := d.params
	for _, anchor := range sortedKeys(a.leadLines) {
		anchorCount := a.leadLines[anchor]
		if anchorCount < p.MinContent {
			continue
		}
		target := max(p.MinContent, int(math.Ceil(float64(anchorCount)*p.MinPrefixRatio)))

		edges := make(map[int][]string, anchorCount)
		var members []int
		for i := range a.lines {
			if a.lines[i].Lead == anchor {
				members = append(members, i)
				edges[i] = mergeSpace(a.lines[i].Tokens)
			}
		}

		stack := []prefixNode{{path: []string{anchor}, members: members, parentCount: anchorCount}}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			depth := len(n.path)
			children := make(map[string][]int)
			if depth < p.MaxPrefixDepth {
				for _, i := range n.members {
					if depth < len(edges[i]) {
						e := edges[i][depth]
						children[e] = append(children[e], i)
					}
				}
			}
			extended := false
			keys := sortedKeys(children)
			// reverse so the stack pops children in sorted order
			for k := len(keys) - 1; k >= 0; k-- {
				c := children[keys[k]]
				if len(c) < target {
					continue
				}
				extended = true
				path := append(append([]string(nil), n.path...), keys[k])
				stack = append(stack, prefixNode{path: path, members: c, parentCount: len(n.members)})
			}
			if extended {
				continue
			}
			d.emitExact(a, set, anchor, n)
			d.emitKeyword(a, set, anchor, n, edges, target)
		}
	}
}

func (d *Detector) emitExact(a *article, set *candidateSet, anchor string, n prefixNode) {
	seq := strings.Join(n.path, "")
	tpl, ok := literalTemplate(seq)
	if !ok {
		tpl = `/^` + spaceClass + `*` + literalPattern(seq) + `/`
	}
	d.emitPrefix(a, set, anchor, n.members, n.parentCount, tpl, VariantPrefixExact, seq, "")
}

// emitKeyword looks past the fixed prefix for a marker token most member
// lines share and emits "prefix * marker+run", where run is the longest
// token run every such line has right after the marker.
func (d *Detector) emitKeyword(a *article, set *candidateSet, anchor string, n prefixNode, edges map[int][]string, target int) {
	p := d.params
	fixed := len(n.path)

	counts := make(map[string]int)
	positions := make(map[string]int)
	for _, i := range n.members {
		e := edges[i]
		seen := make(map[string]bool)
		for k := fixed; k < len(e) && k < fixed+p.MaxMarkerOffset; k++ {
			tok := strings.TrimLeftFunc(e[k], unicode.IsSpace)
			if seen[tok] {
				continue
			}
			seen[tok] = true
			counts[tok]++
			positions[tok] += k - fixed
		}
	}

	marker := ""
	for _, tok := range sortedKeys(counts) {
		c := counts[tok]
		if c < target || float64(c) < p.MinMarkerSelectivity*float64(a.tokenLines[tok]) {
			continue
		}
		if marker == "" || c > counts[marker] ||
			(c == counts[marker] && positions[tok]*counts[marker] < positions[marker]*c) {
			marker = tok
		}
	}
	if marker == "" {
		return
	}

	var matched []int
	var run []string
	for _, i := range n.members {
		e := edges[i]
		at := -1
		for k := fixed; k < len(e) && k < fixed+p.MaxMarkerOffset; k++ {
			if strings.TrimLeftFunc(e[k], unicode.IsSpace) == marker {
				at = k
				break
			}
		}
		if at < 0 {
			continue
		}
		rest := e[at+1:]
		if matched == nil {
			run = append([]string(nil), rest...)
		} else {
			run = run[:commonPrefixLen(run, rest)]
		}
		matched = append(matched, i)
	}
	if len(matched) < p.MinContent {
		return
	}

	seq := strings.Join(n.path, "")
	tail := marker + strings.Join(run, "")
	tpl := ""
	ls, oks := literalTemplate(seq)
	lt, okt := literalTemplate(tail)
	if oks && okt {
		tpl = ls + "*" + lt
	} else {
		tpl = `/^` + spaceClass + `*` + literalPattern(seq) + `.*` + literalPattern(tail) + `/`
	}
	d.emitPrefix(a, set, anchor, matched, len(n.members), tpl, VariantPrefixKeyword, seq, tail)
}

func (d *Detector) emitPrefix(a *article, set *candidateSet, anchor string, members []int, parentCount int, tpl string, v Variant, prefix, suffix string) {
	p := d.params
	pb := prefixScore(len(members), a.leadLines[anchor], parentCount, p.Prefix)
	score := pb
	if score < p.FirstStageMin {
		d.log().Debug("prefix candidate rejected", "stage", "prefix", "template", tpl, "beauty", score)
		return
	}
	titles := make([]string, len(members))
	cursors := make([]int, len(members))
	for k, i := range members {
		titles[k] = a.lines[i].Text
		cursors[k] = a.lines[i].TitleCursor()
	}
	score *= titleScore(titles, p.Title)
	if score < p.FirstStageMin {
		d.log().Debug("prefix candidate rejected", "stage", "title", "template", tpl, "beauty", score)
		return
	}
	score *= sizeScore(cursors, a.size, p.Size)
	if score < p.FirstStageMin {
		d.log().Debug("prefix candidate rejected", "stage", "size", "template", tpl, "beauty", score)
		return
	}
	set.add(&Candidate{
		Template:     tpl,
		Family:       FamilyPrefix,
		Variant:      v,
		Priority:     priority(v, 0),
		Beauty:       score,
		key:          candidateKey{family: FamilyPrefix, variant: v, prefix: prefix, suffix: suffix},
		loose:        looseKey{family: FamilyPrefix, parser: -1, prefix: anchor},
		anchor:       anchor,
		parentCount:  parentCount,
		prefixBeauty: pb,
	})
}

func commonPrefixLen(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
