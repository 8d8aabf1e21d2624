package autotoc

import "regexp"

// selectBest re-applies the top candidates of each family to the whole
// document, rescores them on what they actually match and returns the
// winner with its items.
func (d *Detector) selectBest(a *article, set *candidateSet) (*Candidate, []Item) {
	p := d.params
	looseCache := make(map[looseKey][]bool)

	var scored []*Candidate
	byCandidate := make(map[*Candidate][]int)
	for _, f := range []Family{FamilyNumeral, FamilyPrefix} {
		for _, c := range set.top(f, p.TopCandidates) {
			re := Compile(c.Template)
			if re == nil {
				d.log().Debug("candidate template invalid", "template", c.Template)
				continue
			}
			matched := matchLines(a.lines, re)
			if len(matched) < p.MinContent {
				continue
			}

			loose, ok := looseCache[c.loose]
			if !ok {
				loose = d.looseMask(a, c)
				looseCache[c.loose] = loose
			}
			strict := make(map[int]bool, len(matched))
			for _, i := range matched {
				strict[i] = true
			}
			misses := 0
			for i, l := range loose {
				if l && !strict[i] {
					misses++
				}
			}

			score := d.rescore(a, c, matched)
			score *= decay(float64(misses)/float64(len(matched)+misses), p.MismatchExp)

			fc := *c
			fc.Beauty = score
			scored = append(scored, &fc)
			byCandidate[&fc] = matched
			d.log().Debug("candidate rescored",
				"template", c.Template,
				"family", c.Family.String(),
				"grouped", c.Beauty,
				"prefix_beauty", c.prefixBeauty,
				"matched", len(matched),
				"near_misses", misses,
				"beauty", score)
		}
	}
	if len(scored) == 0 {
		return nil, nil
	}
	rank(scored)
	best := scored[0]
	if best.Beauty <= 0 || best.Beauty < p.SecondStageMin {
		return nil, nil
	}
	return best, collectItems(a.lines, byCandidate[best])
}

// rescore recomputes a candidate's beauty over the lines its template
// actually matches.
func (d *Detector) rescore(a *article, c *Candidate, matched []int) float64 {
	p := d.params
	var score float64
	switch c.Family {
	case FamilyNumeral:
		values := make([]int, 0, len(matched))
		for _, i := range matched {
			if v, ok := numeralAfter(c.parser, a.lines[i].Joined(), c.prefix, p.MaxMatchesPerLine); ok {
				values = append(values, v)
			}
		}
		score = numeralScore(values, len(matched), p.Numeral)
	case FamilyPrefix:
		score = prefixScore(len(matched), a.leadLines[c.anchor], c.parentCount, p.Prefix)
	}
	if score == 0 {
		return 0
	}

	titles := make([]string, len(matched))
	cursors := make([]int, len(matched))
	for k, i := range matched {
		titles[k] = a.lines[i].Text
		cursors[k] = a.lines[i].TitleCursor()
	}
	return score * titleScore(titles, p.Title) * sizeScore(cursors, a.size, p.Size)
}

// looseMask marks the lines that have the candidate's structural shape
// whether or not its template accepts them: the numeral prefix followed by
// any numeral of the same system, or the same leading symbol.
func (d *Detector) looseMask(a *article, c *Candidate) []bool {
	mask := make([]bool, len(a.lines))
	switch c.Family {
	case FamilyNumeral:
		re := regexp.MustCompile(`^` + literalPattern(c.prefix) + `[` + charClass(c.parser.Charset()) + `]`)
		for i := range a.lines {
			mask[i] = a.lines[i].Text != "" && re.MatchString(a.lines[i].Text)
		}
	case FamilyPrefix:
		for i := range a.lines {
			mask[i] = a.lines[i].Lead == c.anchor
		}
	}
	return mask
}

// numeralAfter finds the numeral that directly follows prefix in text.
func numeralAfter(parser numeralParser, text, prefix string, limit int) (int, bool) {
	for _, m := range parser.Extract(text, limit) {
		if m.Prefix == prefix {
			return m.Value, true
		}
	}
	return 0, false
}
