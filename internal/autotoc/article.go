package autotoc

import (
	"sort"
	"strings"
	"unicode"
)

// wordScripts are the scripts whose consecutive letters form one token.
// Anything else (notably Han, Kana, Hangul) is tokenized per character.
var wordScripts = []*unicode.RangeTable{
	unicode.Latin,
	unicode.Cyrillic,
	unicode.Greek,
	unicode.Georgian,
	unicode.Armenian,
	unicode.Arabic,
	unicode.Tibetan,
}

// runeClass groups runes into tokens; every word script gets its own class
// starting at classWord.
type runeClass int

const (
	classSingle runeClass = iota
	classDigit
	classWord
)

func classify(r rune) runeClass {
	if unicode.IsDigit(r) {
		return classDigit
	}
	for i, t := range wordScripts {
		if unicode.Is(t, r) {
			return classWord + runeClass(i)
		}
	}
	return classSingle
}

// Tokenize splits a trimmed line into script-aware tokens, keeping at most
// limit tokens (limit <= 0 means no cap). Concatenating the tokens yields
// the line (or its capped prefix).
func Tokenize(line string, limit int) []string {
	var tokens []string
	start := -1
	prev := classSingle
	for i, r := range line {
		c := classify(r)
		if start >= 0 && c != classSingle && c == prev {
			continue
		}
		if start >= 0 {
			tokens = append(tokens, line[start:i])
			if limit > 0 && len(tokens) >= limit {
				return tokens
			}
		}
		start = i
		prev = c
	}
	if start >= 0 {
		tokens = append(tokens, line[start:])
	}
	return tokens
}

// isSymbol reports whether a token has no letter or digit in it.
func isSymbol(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isSpace(token string) bool {
	return token != "" && strings.TrimSpace(token) == ""
}

// Line is one line of the scanned document.
type Line struct {
	Raw    string
	Text   string // trimmed
	Cursor int    // byte offset of Raw in the document
	Tokens []string
	Lead   string // leading symbol token, "" when the line starts with a letter or digit
}

// Joined is the token-joined text numeral extraction runs against.
func (l *Line) Joined() string {
	return strings.Join(l.Tokens, "")
}

// TitleCursor is the byte offset of the trimmed text in the document.
func (l *Line) TitleCursor() int {
	return l.Cursor + len(l.Raw) - len(strings.TrimLeftFunc(l.Raw, unicode.IsSpace))
}

// article aggregates per-document statistics for one scan.
type article struct {
	size       int
	lines      []Line
	tokenLines map[string]int
	leadLines  map[string]int
}

// splitLines cuts text into lines on '\n' and records their offsets.
func splitLines(text string) []Line {
	raws := strings.Split(text, "\n")
	lines := make([]Line, len(raws))
	cursor := 0
	for i, raw := range raws {
		lines[i] = Line{Raw: raw, Text: strings.TrimSpace(raw), Cursor: cursor}
		cursor += len(raw) + 1
	}
	return lines
}

func newArticle(text string, maxTokens int) *article {
	a := &article{
		size:       len(text),
		lines:      splitLines(text),
		tokenLines: make(map[string]int),
		leadLines:  make(map[string]int),
	}
	seen := make(map[string]bool)
	for i := range a.lines {
		l := &a.lines[i]
		if l.Text == "" {
			continue
		}
		l.Tokens = Tokenize(l.Text, maxTokens)
		clear(seen)
		for _, t := range l.Tokens {
			if !seen[t] {
				seen[t] = true
				a.tokenLines[t]++
			}
		}
		if isSymbol(l.Tokens[0]) {
			l.Lead = l.Tokens[0]
			a.leadLines[l.Lead]++
		}
	}
	return a
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
