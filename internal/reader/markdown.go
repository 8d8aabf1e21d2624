package reader

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

// MarkdownFormat implements Format for Markdown files. ATX headers define
// the TOC; a file without any is treated like plain text and its headings
// are detected.
type MarkdownFormat struct {
	// Detector runs heading detection for header-less files. nil uses
	// autotoc defaults.
	Detector *autotoc.Detector
}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Extract(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	// headerRegex matches ATX headers (# to ######) with optional closing hashes
	headerRegex = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)
	fenceRegex  = regexp.MustCompile("^ {0,3}(```|~~~)")
)

// markdownHeadings returns the ATX headers of text outside fenced code
// blocks. Cursors point at the leading '#', levels start at 0 for h1.
func markdownHeadings(text string) ([]autotoc.Item, []int) {
	var items []autotoc.Item
	var levels []int
	var fence string
	cursor := 0
	for _, line := range strings.Split(text, "\n") {
		start := cursor
		cursor += len(line) + 1
		line = strings.TrimSuffix(line, "\r")

		if m := fenceRegex.FindStringSubmatch(line); m != nil {
			switch fence {
			case "":
				fence = m[1]
			case m[1]:
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		m := headerRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		items = append(items, autotoc.Item{Title: strings.TrimSpace(m[2]), Cursor: start + indent})
		levels = append(levels, len(m[1])-1)
	}
	return items, levels
}

// headings returns the items that structure text. levels is nil when the
// items were detected rather than read from headers.
func (f *MarkdownFormat) headings(text string) (items []autotoc.Item, levels []int) {
	if items, levels = markdownHeadings(text); len(items) > 0 {
		return items, levels
	}
	return detectItems(f.Detector, text), nil
}

// structure reads filename and resolves its headings once for both the TOC
// and the chapter list.
func (f *MarkdownFormat) structure(filename string) ([]TOCEntry, []Chapter, []string, error) {
	text, err := f.Extract(filename)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read markdown: %w", err)
	}
	words := ParseText(text)
	items, levels := f.headings(text)
	entries := TOCFromItems(text, items)
	for i, lvl := range levels {
		entries[i].Level = lvl
	}
	return entries, ChaptersFromItems(text, items, len(words)), words, nil
}

// TOC extracts the table of contents from a Markdown file by parsing headers.
func (f *MarkdownFormat) TOC(filename string) ([]TOCEntry, error) {
	toc, _, _, err := f.structure(filename)
	return toc, err
}

// ExtractChapters extracts text with chapter boundaries from headers.
func (f *MarkdownFormat) ExtractChapters(filename string) ([]Chapter, []string, error) {
	_, chapters, words, err := f.structure(filename)
	return chapters, words, err
}

// Load resolves text, TOC and chapters with a single heading pass.
func (f *MarkdownFormat) Load(filename string) (*Document, error) {
	toc, chapters, words, err := f.structure(filename)
	if err != nil {
		return nil, err
	}
	return &Document{
		Text:     strings.Join(words, " "),
		TOC:      toc,
		Chapters: chapters,
	}, nil
}
