package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

// 35 words, no digits, no leading symbols
const textFiller = "The wind moved across the quiet valley while the river ran slow under a pale and patient sky. " +
	"Nobody in the village spoke of the winter, though everyone felt it waiting beyond the far hills."

func chapterBook(n int) string {
	var parts []string
	for i := 1; i <= n; i++ {
		parts = append(parts, fmt.Sprintf("Chapter %d", i), textFiller)
	}
	return strings.Join(parts, "\n")
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestTextFormat(t *testing.T) {
	f := &TextFormat{}
	if f.Name() != "Text" {
		t.Errorf("Name() = %q, want Text", f.Name())
	}
	if exts := f.Extensions(); len(exts) != 2 || exts[0] != ".txt" || exts[1] != ".text" {
		t.Errorf("Extensions() = %v, want [.txt .text]", exts)
	}
}

func TestTextTOC(t *testing.T) {
	path := writeTemp(t, "book.txt", chapterBook(5))

	f := &TextFormat{}
	toc, err := f.TOC(path)
	if err != nil {
		t.Fatalf("TOC extraction failed: %v", err)
	}
	if len(toc) != 5 {
		t.Fatalf("Expected 5 TOC entries, got %d", len(toc))
	}

	for i, entry := range toc {
		if want := fmt.Sprintf("Chapter %d", i+1); entry.Title != want {
			t.Errorf("Entry %d: expected title %q, got %q", i, want, entry.Title)
		}
		if want := 37 * i; entry.WordIndex != want {
			t.Errorf("Entry %d: expected word index %d, got %d", i, want, entry.WordIndex)
		}
		if entry.Level != 0 {
			t.Errorf("Entry %d: expected level 0, got %d", i, entry.Level)
		}
	}

	wantPreview := "The wind moved across the quiet valley while the river"
	if toc[0].Preview != wantPreview {
		t.Errorf("Preview = %q, want %q", toc[0].Preview, wantPreview)
	}
}

func TestTextTOCWithoutHeadings(t *testing.T) {
	path := writeTemp(t, "prose.txt", textFiller+"\n"+textFiller)

	toc, err := (&TextFormat{}).TOC(path)
	if err != nil {
		t.Fatalf("TOC extraction failed: %v", err)
	}
	if len(toc) != 0 {
		t.Errorf("Expected no TOC entries, got %v", toc)
	}
}

func TestTextExtractChapters(t *testing.T) {
	path := writeTemp(t, "book.txt", chapterBook(5))

	f := &TextFormat{Detector: autotoc.New(autotoc.DefaultParams())}
	chapters, words, err := f.ExtractChapters(path)
	if err != nil {
		t.Fatalf("ExtractChapters failed: %v", err)
	}
	if len(words) != 185 {
		t.Errorf("Expected 185 words, got %d", len(words))
	}
	if len(chapters) != 5 {
		t.Fatalf("Expected 5 chapters, got %d", len(chapters))
	}
	for i, ch := range chapters {
		if ch.WordStart != 37*i || ch.WordEnd != 37*i+36 {
			t.Errorf("Chapter %d: got [%d, %d], want [%d, %d]", i, ch.WordStart, ch.WordEnd, 37*i, 37*i+36)
		}
		if words[ch.WordStart] != "Chapter" {
			t.Errorf("Chapter %d starts at %q", i, words[ch.WordStart])
		}
	}
}

func TestTextExtractChaptersFallback(t *testing.T) {
	path := writeTemp(t, "prose.txt", textFiller)

	chapters, words, err := (&TextFormat{}).ExtractChapters(path)
	if err != nil {
		t.Fatalf("ExtractChapters failed: %v", err)
	}
	if len(chapters) != 1 || chapters[0].Title != "Document" {
		t.Fatalf("Expected single Document chapter, got %v", chapters)
	}
	if chapters[0].WordEnd != len(words)-1 {
		t.Errorf("WordEnd = %d, want %d", chapters[0].WordEnd, len(words)-1)
	}
}

func TestWordIndices(t *testing.T) {
	text := "Preface words here\n  Chapter 1\nbody text\n第二章 风起\nmore"
	items := []autotoc.Item{
		{Title: "Chapter 1", Cursor: strings.Index(text, "Chapter 1")},
		{Title: "第二章 风起", Cursor: strings.Index(text, "第二章")},
	}
	got := wordIndices(text, items)
	words := ParseText(text)
	for i, idx := range got {
		if !strings.HasPrefix(items[i].Title, words[idx]) {
			t.Errorf("item %d maps to word %q", i, words[idx])
		}
	}
	if got[0] != 3 || got[1] != 7 {
		t.Errorf("wordIndices = %v, want [3 7]", got)
	}
}

func TestFirstWords(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"  one two\nthree  four ", 3, "one two three"},
		{"short", 10, "short"},
		{"   ", 10, ""},
		{"a b c", 0, ""},
	}
	for _, tt := range tests {
		if got := strings.Join(firstWords(tt.in, tt.n), " "); got != tt.want {
			t.Errorf("firstWords(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
