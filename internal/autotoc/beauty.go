package autotoc

import (
	"math"
	"sort"
	"unicode/utf8"
)

// penalty turns a ratio in (0,1] into a factor ratio^exp.
func penalty(ratio, exp float64) float64 {
	if exp == 0 {
		return 1
	}
	if ratio <= 0 {
		return 0
	}
	if ratio >= 1 {
		return 1
	}
	return math.Pow(ratio, exp)
}

// decay is exp(-exp*x) for x >= 0.
func decay(x, exp float64) float64 {
	if exp == 0 || x <= 0 {
		return 1
	}
	return math.Exp(-exp * x)
}

// sizeScore measures how evenly the headings at cursors cut a document of
// total bytes. cursors must be ascending.
func sizeScore(cursors []int, total int, p SizeParams) float64 {
	if len(cursors) == 0 || total <= 0 {
		return 0
	}
	spans := make([]float64, 0, len(cursors)+1)
	if cursors[0] > 0 {
		spans = append(spans, float64(cursors[0]))
	}
	for i := 1; i < len(cursors); i++ {
		spans = append(spans, float64(cursors[i]-cursors[i-1]))
	}
	tail := float64(total - cursors[len(cursors)-1])
	docSize := float64(total)
	if largest := maxFloat(spans); len(spans) > 0 && tail > largest*p.OutlierRatio {
		docSize -= tail
	} else {
		spans = append(spans, tail)
	}
	if len(spans) < 3 || docSize <= 0 {
		return 0
	}

	sorted := append([]float64(nil), spans...)
	sort.Float64s(sorted)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	spread := math.Max(q3-q1, percentile(sorted, 0.5)*p.MinSpread)
	lo, hi := q1-p.FenceFactor*spread, q3+p.FenceFactor*spread

	var inliers []float64
	covered := 0.0
	for _, s := range sorted {
		if s >= lo && s <= hi {
			inliers = append(inliers, s)
			covered += s
		}
	}
	if len(inliers) == 0 {
		return 0
	}

	low, high := splitClusters(inliers, p.SplitIterations)

	return penalty(float64(len(inliers))/float64(len(sorted)), p.CountExp) *
		penalty(covered/docSize, p.CoverageExp) *
		decay(linearDeviation(low), p.DeviationExp) *
		decay(linearDeviation(high), p.DeviationExp)
}

// percentile interpolates linearly between closest ranks of sorted.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	i := int(pos)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// splitClusters separates ascending values into a low and a high cluster by
// alternating the split point with the midpoint of the two cluster means.
func splitClusters(sorted []float64, iterations int) (low, high []float64) {
	split := (sorted[0] + sorted[len(sorted)-1]) / 2
	cut := 0
	for it := 0; it < iterations; it++ {
		cut = sort.SearchFloat64s(sorted, math.Nextafter(split, math.Inf(1)))
		if cut == 0 || cut == len(sorted) {
			break
		}
		next := (mean(sorted[:cut]) + mean(sorted[cut:])) / 2
		if next == split {
			break
		}
		split = next
	}
	cut = sort.SearchFloat64s(sorted, math.Nextafter(split, math.Inf(1)))
	return sorted[:cut], sorted[cut:]
}

// linearDeviation fits v[i] = a + b*i by least squares and returns the RMS
// residual relative to the mean value.
func linearDeviation(v []float64) float64 {
	n := float64(len(v))
	if len(v) < 3 {
		return 0
	}
	m := mean(v)
	if m <= 0 {
		return 0
	}
	xm := (n - 1) / 2
	var sxy, sxx float64
	for i, y := range v {
		dx := float64(i) - xm
		sxy += dx * (y - m)
		sxx += dx * dx
	}
	b := sxy / sxx
	a := m - b*xm
	var ss float64
	for i, y := range v {
		r := y - (a + b*float64(i))
		ss += r * r
	}
	return math.Sqrt(ss/n) / m
}

// titleScore judges the heading texts themselves.
func titleScore(titles []string, p TitleParams) float64 {
	if len(titles) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(titles))
	dups := 0
	valid := 0
	length := 0
	for _, t := range titles {
		n := utf8.RuneCountInString(t)
		if n > p.MaxLength {
			continue
		}
		if seen[t] {
			dups++
			if dups > p.MaxDuplicates {
				continue
			}
		}
		seen[t] = true
		valid++
		length += n
	}
	if valid == 0 {
		return 0
	}
	meanLen := float64(length) / float64(valid) / p.MaxMeanLength
	return decay(float64(len(titles))/float64(valid)-1, p.ValidExp) *
		decay(meanLen*meanLen, p.MeanLengthExp)
}

// backbone returns the indices of the longest non-decreasing subsequence of
// values. Equal values extend the running backbone instead of replacing its
// tail.
func backbone(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	tails := make([]int, 0, len(values)) // indices into values
	prev := make([]int, len(values))
	for i, v := range values {
		// first tail strictly greater than v
		j := sort.Search(len(tails), func(k int) bool { return values[tails[k]] > v })
		if j > 0 {
			prev[i] = tails[j-1]
		} else {
			prev[i] = -1
		}
		if j == len(tails) {
			tails = append(tails, i)
		} else {
			tails[j] = i
		}
	}
	out := make([]int, len(tails))
	for k, i := len(tails)-1, tails[len(tails)-1]; k >= 0; k, i = k-1, prev[i] {
		out[k] = i
	}
	return out
}

// numeralScore judges the sequence of numeral values found on the matched
// lines, in document order. total is the number of matched lines, which may
// exceed len(values) when some lines yielded no value.
func numeralScore(values []int, total int, p NumeralParams) float64 {
	if total < len(values) {
		total = len(values)
	}
	if len(values) == 0 {
		return 0
	}
	bb := backbone(values)
	inBackbone := make([]bool, len(values))
	for _, i := range bb {
		inBackbone[i] = true
	}
	first, last := values[bb[0]], values[bb[len(bb)-1]]

	distinct := 1
	for k := 1; k < len(bb); k++ {
		if values[bb[k]] != values[bb[k-1]] {
			distinct++
		}
	}
	holes := (last - first + 1) - distinct

	// distance of every off-backbone value from the range spanned by its
	// backbone neighbours
	displacement := 0
	lo := math.MinInt
	for i, v := range values {
		if inBackbone[i] {
			lo = v
			continue
		}
		hi := math.MaxInt
		for j := i + 1; j < len(values); j++ {
			if inBackbone[j] {
				hi = values[j]
				break
			}
		}
		switch {
		case lo != math.MinInt && v < lo:
			displacement += lo - v
		case hi != math.MaxInt && v > hi:
			displacement += v - hi
		}
	}

	maxValue := 1
	for _, v := range values {
		maxValue = max(maxValue, v)
	}

	return penalty(float64(len(values))/float64(maxValue), p.MaxValueExp) *
		penalty(float64(len(bb))/float64(total), p.BackboneExp) *
		decay(float64(displacement)/float64(total), p.DisplacementExp) *
		penalty(float64(distinct)/float64(distinct+holes), p.HoleExp)
}

// prefixScore rewards a match count that is a large share of the lines
// sharing its anchor and of the lines sharing its parent prefix.
func prefixScore(count, anchorCount, parentCount int, p PrefixParams) float64 {
	if count <= 0 || anchorCount <= 0 || parentCount <= 0 {
		return 0
	}
	return penalty(float64(count)/float64(anchorCount), p.AnchorExp) *
		penalty(float64(count)/float64(parentCount), p.ParentExp)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func maxFloat(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}
