package reader

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

const previewWords = 10

// TextFormat implements Format for plain text files. Plain text carries no
// structure, so TOC and chapters are inferred from the headings found by
// the autotoc detector.
type TextFormat struct {
	// Detector runs heading detection. nil uses autotoc defaults.
	Detector *autotoc.Detector
}

func init() {
	Register(&TextFormat{})
}

func (f *TextFormat) Name() string         { return "Text" }
func (f *TextFormat) Extensions() []string { return []string{".txt", ".text"} }

func (f *TextFormat) Extract(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// TOC detects headings in a plain text file. A file without recognizable
// headings yields an empty TOC, not an error.
func (f *TextFormat) TOC(filename string) ([]TOCEntry, error) {
	text, err := f.Extract(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}
	return TOCFromItems(text, detectItems(f.Detector, text)), nil
}

// ExtractChapters splits a plain text file into words and cuts chapters at
// the detected headings.
func (f *TextFormat) ExtractChapters(filename string) ([]Chapter, []string, error) {
	text, err := f.Extract(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read text: %w", err)
	}
	words := ParseText(text)
	return ChaptersFromItems(text, detectItems(f.Detector, text), len(words)), words, nil
}

// wordIndices maps each item cursor to the index of the word it starts in
// ParseText(text). Items must be ordered by cursor and sit on word starts.
func wordIndices(text string, items []autotoc.Item) []int {
	out := make([]int, len(items))
	prev, count := 0, 0
	for i, it := range items {
		count += len(strings.Fields(text[prev:it.Cursor]))
		out[i] = count
		prev = it.Cursor
	}
	return out
}

// TOCFromItems converts detected headings into TOC entries. The preview is
// the first few words following the heading line.
func TOCFromItems(text string, items []autotoc.Item) []TOCEntry {
	if len(items) == 0 {
		return nil
	}
	idx := wordIndices(text, items)
	entries := make([]TOCEntry, len(items))
	for i, it := range items {
		end := len(text)
		if i+1 < len(items) {
			end = items[i+1].Cursor
		}
		body := text[it.Cursor:end]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		} else {
			body = ""
		}
		entries[i] = TOCEntry{
			Title:     it.Title,
			Preview:   strings.Join(firstWords(body, previewWords), " "),
			WordIndex: idx[i],
		}
	}
	return entries
}

// ChaptersFromItems cuts a document of totalWords words at the detected
// headings. Without headings the whole text is one chapter.
func ChaptersFromItems(text string, items []autotoc.Item, totalWords int) []Chapter {
	if totalWords == 0 {
		return nil
	}
	if len(items) == 0 {
		return []Chapter{{Title: "Document", WordStart: 0, WordEnd: totalWords - 1}}
	}
	idx := wordIndices(text, items)
	chapters := make([]Chapter, 0, len(items))
	for i, it := range items {
		end := totalWords - 1
		if i+1 < len(items) {
			end = idx[i+1] - 1
		}
		if end < idx[i] {
			continue
		}
		chapters = append(chapters, Chapter{
			Title:     it.Title,
			WordStart: idx[i],
			WordEnd:   end,
		})
	}
	return chapters
}

func firstWords(s string, n int) []string {
	var out []string
	for len(out) < n {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			break
		}
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i])
		s = s[i:]
	}
	return out
}
