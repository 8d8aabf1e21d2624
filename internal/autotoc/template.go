package autotoc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrInvalidTemplate is returned by CompileErr for templates that cannot be
// turned into a matcher.
var ErrInvalidTemplate = errors.New("invalid template")

var explicitTemplate = regexp.MustCompile(`(?s)^/(.*)/([a-z]*)$`)

// spaceClass matches exactly the runes unicode.IsSpace accepts, including
// ideographic and no-break spaces that \s alone misses.
const spaceClass = `[\s\v\x{85}\p{Z}]`

// Compile turns a template into a line matcher, or nil when the template is
// invalid. Two forms are accepted:
//
//	/pattern/flags   a regular expression; flags i, m and s are honoured,
//	                 g, u and y are accepted and ignored
//	anything else    a literal where whitespace runs match one or more
//	                 whitespace characters, * matches any run of characters
//	                 and ? matches exactly one character
//
// Literal templates match at the start of a line, after optional
// indentation.
func Compile(template string) *regexp.Regexp {
	re, err := CompileErr(template)
	if err != nil {
		return nil
	}
	return re
}

// CompileErr is Compile with the reason for a failure.
func CompileErr(template string) (*regexp.Regexp, error) {
	if template == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTemplate)
	}
	if m := explicitTemplate.FindStringSubmatch(template); m != nil {
		var flags strings.Builder
		for _, f := range m[2] {
			switch f {
			case 'i', 'm', 's':
				if !strings.ContainsRune(flags.String(), f) {
					flags.WriteRune(f)
				}
			case 'g', 'u', 'y':
			default:
				return nil, fmt.Errorf("%w: unsupported flag %q", ErrInvalidTemplate, f)
			}
		}
		expr := m[1]
		if flags.Len() > 0 {
			expr = "(?" + flags.String() + ")" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
		return re, nil
	}

	var b strings.Builder
	b.WriteString(`^` + spaceClass + `*`)
	space := false
	for _, r := range template {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteString(spaceClass + `+`)
			}
			space = true
			continue
		}
		space = false
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return regexp.MustCompile(b.String()), nil
}

// Apply runs a template over text and returns the heading items it selects.
// It reports false when the template does not compile.
func Apply(text, template string) ([]Item, bool) {
	re := Compile(template)
	if re == nil {
		return nil, false
	}
	lines := splitLines(text)
	return collectItems(lines, matchLines(lines, re)), true
}

// matchLines returns the indices of the non-blank lines re accepts.
func matchLines(lines []Line, re *regexp.Regexp) []int {
	var out []int
	for i := range lines {
		if lines[i].Text != "" && re.MatchString(lines[i].Raw) {
			out = append(out, i)
		}
	}
	return out
}

func collectItems(lines []Line, idx []int) []Item {
	items := make([]Item, len(idx))
	for k, i := range idx {
		items[k] = Item{Title: lines[i].Text, Cursor: lines[i].TitleCursor()}
	}
	return items
}
