package autotoc

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// NumberMatch is one numeral found inside a line.
type NumberMatch struct {
	Prefix  string
	Numeral string
	Suffix  string
	Value   int
	Cursor  int
	Title   string
	line    int
}

// numeralParser locates numerals of one numbering system.
type numeralParser interface {
	// ID is stable across runs and orders parsers in the table.
	ID() int
	Name() string
	Charset() string
	Priority() int
	Extract(text string, limit int) []NumberMatch
}

type charsetParser struct {
	id       int
	name     string
	charset  string
	priority int
	pattern  *regexp.Regexp
	parse    func(string) (int, bool)
}

func newCharsetParser(id int, name, charset string, priority int, parse func(string) (int, bool)) *charsetParser {
	return &charsetParser{
		id:       id,
		name:     name,
		charset:  charset,
		priority: priority,
		pattern:  regexp.MustCompile("[" + charClass(charset) + "]+"),
		parse:    parse,
	}
}

func (p *charsetParser) ID() int         { return p.id }
func (p *charsetParser) Name() string    { return p.name }
func (p *charsetParser) Charset() string { return p.charset }
func (p *charsetParser) Priority() int   { return p.priority }

func (p *charsetParser) Extract(text string, limit int) []NumberMatch {
	locs := p.pattern.FindAllStringIndex(text, limit)
	out := make([]NumberMatch, 0, len(locs))
	for _, loc := range locs {
		num := text[loc[0]:loc[1]]
		v, ok := p.parse(num)
		if !ok {
			continue
		}
		out = append(out, NumberMatch{
			Prefix:  text[:loc[0]],
			Numeral: num,
			Suffix:  text[loc[1]:],
			Value:   v,
		})
	}
	return out
}

const (
	hanDigits       = "〇零一二两三四五六七八九"
	hanMultipliers  = "十百千"
	hanFormalDigits = "零壹贰貳叁參肆伍陆陸柒捌玖"
	hanFormalMults  = "拾佰仟"
	asciiDigits     = "0123456789"
	fullDigits      = "０１２３４５６７８９"
)

var hanValues = map[rune]int{
	'〇': 0, '零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
	'壹': 1, '贰': 2, '貳': 2, '叁': 3, '參': 3, '肆': 4, '伍': 5,
	'陆': 6, '陸': 6, '柒': 7, '捌': 8, '玖': 9,
}

var hanMultiplierValues = map[rune]int{
	'十': 10, '百': 100, '千': 1000,
	'拾': 10, '佰': 100, '仟': 1000,
}

// parsers is the static extractor table. Order matters: candidates from an
// earlier parser win deduplication against identical later ones.
var parsers = []numeralParser{
	newCharsetParser(0, "arabic", asciiDigits, 0, parseArabic),
	newCharsetParser(1, "fullwidth", fullDigits, 1, parseFullWidth),
	newCharsetParser(2, "han", hanDigits+hanMultipliers, 0, ParseHan),
	newCharsetParser(3, "han-formal", hanFormalDigits+hanFormalMults, 1, ParseHan),
	newCharsetParser(4, "han-mixed", hanDigits+hanMultipliers+hanFormalDigits+hanFormalMults, 2, ParseHan),
}

// maxArabicDigits keeps parsed values well inside int range.
const maxArabicDigits = 9

func parseArabic(s string) (int, bool) {
	if len(s) > maxArabicDigits {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFullWidth(s string) (int, bool) {
	return parseArabic(width.Narrow.String(s))
}

// ParseHan converts a Chinese numeral to its integer value. Plain digits
// accumulate positionally ("一九八四" is 1984); a multiplier scales the
// pending digits (an absent digit counts as one, so "十一" is 11).
func ParseHan(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total, acc := 0, 0
	pending := false
	for _, r := range s {
		if d, ok := hanValues[r]; ok {
			acc = acc*10 + d
			pending = true
			if acc > 1e9 {
				return 0, false
			}
			continue
		}
		m, ok := hanMultiplierValues[r]
		if !ok {
			return 0, false
		}
		if !pending {
			acc = 1
		}
		total += acc * m
		acc = 0
		pending = false
	}
	return total + acc, true
}

// charClass renders a charset as regexp class contents, collapsing runs of
// consecutive code points into ranges.
func charClass(charset string) string {
	runes := sortedUniqueRunes(charset)
	var b strings.Builder
	for i := 0; i < len(runes); {
		j := i
		for j+1 < len(runes) && runes[j+1] == runes[j]+1 {
			j++
		}
		b.WriteString(regexp.QuoteMeta(string(runes[i])))
		if j-i >= 2 {
			b.WriteByte('-')
			b.WriteString(regexp.QuoteMeta(string(runes[j])))
		} else if j > i {
			b.WriteString(regexp.QuoteMeta(string(runes[j])))
		}
		i = j + 1
	}
	return b.String()
}
