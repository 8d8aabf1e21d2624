package reader

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

func TestMarkdownTOC(t *testing.T) {
	// Create a temp markdown file
	tmpDir := t.TempDir()
	mdFile := filepath.Join(tmpDir, "test.md")

	content := `# Introduction
This is the introduction.

## Getting Started
Here's how to get started with the project.

### Prerequisites
You'll need these things installed.

## Usage
Here's how to use it.

# Advanced Topics
More complex stuff here.

## Configuration
Configure everything.
`
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	f := &MarkdownFormat{}
	toc, err := f.TOC(mdFile)
	if err != nil {
		t.Fatalf("TOC extraction failed: %v", err)
	}

	if len(toc) != 6 {
		t.Errorf("Expected 6 TOC entries, got %d", len(toc))
	}

	// Check levels
	expectedLevels := []int{0, 1, 2, 1, 0, 1} // h1=0, h2=1, h3=2
	for i, entry := range toc {
		if entry.Level != expectedLevels[i] {
			t.Errorf("Entry %d (%s): expected level %d, got %d", i, entry.Title, expectedLevels[i], entry.Level)
		}
	}

	// Check titles
	expectedTitles := []string{"Introduction", "Getting Started", "Prerequisites", "Usage", "Advanced Topics", "Configuration"}
	for i, entry := range toc {
		if entry.Title != expectedTitles[i] {
			t.Errorf("Entry %d: expected title %q, got %q", i, expectedTitles[i], entry.Title)
		}
	}

	if toc[3].Preview != "Here's how to use it." {
		t.Errorf("Usage preview = %q", toc[3].Preview)
	}

	// Word indices should be monotonically increasing
	lastIdx := -1
	for i, entry := range toc {
		if entry.WordIndex < lastIdx {
			t.Errorf("Entry %d: word index %d is less than previous %d", i, entry.WordIndex, lastIdx)
		}
		lastIdx = entry.WordIndex
	}
}

func TestMarkdownExtractChapters(t *testing.T) {
	tmpDir := t.TempDir()
	mdFile := filepath.Join(tmpDir, "test.md")

	content := `# Chapter 1
First chapter content with some words.

# Chapter 2
Second chapter has more content here.

# Chapter 3
Third and final chapter.
`
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	f := &MarkdownFormat{}
	chapters, words, err := f.ExtractChapters(mdFile)
	if err != nil {
		t.Fatalf("ExtractChapters failed: %v", err)
	}

	if len(chapters) != 3 {
		t.Errorf("Expected 3 chapters, got %d", len(chapters))
	}

	if len(words) == 0 {
		t.Error("Expected non-empty words")
	}

	// Check chapter titles
	expectedTitles := []string{"Chapter 1", "Chapter 2", "Chapter 3"}
	for i, ch := range chapters {
		if ch.Title != expectedTitles[i] {
			t.Errorf("Chapter %d: expected title %q, got %q", i, expectedTitles[i], ch.Title)
		}
	}

	// Word boundaries should be continuous
	for i := 1; i < len(chapters); i++ {
		if chapters[i].WordStart != chapters[i-1].WordEnd+1 {
			t.Errorf("Gap between chapter %d and %d", i-1, i)
		}
	}
}

func TestMarkdownNoHeaders(t *testing.T) {
	tmpDir := t.TempDir()
	mdFile := filepath.Join(tmpDir, "plain.md")

	content := `This is just plain text.
No headers at all.
Just paragraphs.
`
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	f := &MarkdownFormat{}
	toc, err := f.TOC(mdFile)
	if err != nil {
		t.Fatalf("TOC extraction failed: %v", err)
	}

	if len(toc) != 0 {
		t.Errorf("Expected empty TOC for file without headers, got %d entries", len(toc))
	}

	// ExtractChapters should still work
	chapters, words, err := f.ExtractChapters(mdFile)
	if err != nil {
		t.Fatalf("ExtractChapters failed: %v", err)
	}

	// Should have created a default chapter
	if len(chapters) != 1 {
		t.Errorf("Expected 1 default chapter, got %d", len(chapters))
	}

	if chapters[0].Title != "Document" {
		t.Errorf("Expected default title 'Document', got %q", chapters[0].Title)
	}

	if len(words) == 0 {
		t.Error("Expected non-empty words")
	}
}

func TestMarkdownHeadings(t *testing.T) {
	content := "# Title #\n" +
		"Intro text.\n" +
		"```\n" +
		"# not a heading\n" +
		"~~~\n" +
		"# still code\n" +
		"```\n" +
		"   ## Indented\n" +
		"#NoSpace\n" +
		"####### Too deep\n" +
		"### C# notes ###\n"

	items, levels := markdownHeadings(content)

	wantTitles := []string{"Title", "Indented", "C# notes"}
	wantLevels := []int{0, 1, 2}
	if len(items) != len(wantTitles) {
		t.Fatalf("got %d headings %v, want %d", len(items), items, len(wantTitles))
	}
	for i := range items {
		if items[i].Title != wantTitles[i] || levels[i] != wantLevels[i] {
			t.Errorf("heading %d = %q level %d, want %q level %d", i, items[i].Title, levels[i], wantTitles[i], wantLevels[i])
		}
		if content[items[i].Cursor] != '#' {
			t.Errorf("heading %d cursor %d does not point at '#'", i, items[i].Cursor)
		}
	}
}

func TestMarkdownDetectsPlainHeadings(t *testing.T) {
	mdFile := writeTemp(t, "book.md", chapterBook(5))

	f := &MarkdownFormat{}
	toc, err := f.TOC(mdFile)
	if err != nil {
		t.Fatalf("TOC extraction failed: %v", err)
	}
	if len(toc) != 5 {
		t.Fatalf("Expected 5 detected entries, got %d", len(toc))
	}
	for i, entry := range toc {
		if entry.Title != fmt.Sprintf("Chapter %d", i+1) || entry.Level != 0 {
			t.Errorf("entry %d = %+v", i, entry)
		}
	}

	chapters, _, err := f.ExtractChapters(mdFile)
	if err != nil {
		t.Fatalf("ExtractChapters failed: %v", err)
	}
	if len(chapters) != 5 || chapters[4].WordStart != 148 {
		t.Errorf("chapters = %+v", chapters)
	}
}

// countingDetector returns a detector whose debug log lands in buf, so tests
// can count how many detection runs happened.
func countingDetector(buf *bytes.Buffer) *autotoc.Detector {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return autotoc.New(autotoc.DefaultParams()).WithLogger(logger)
}

func TestMarkdownLoadDetectsOnce(t *testing.T) {
	mdFile := writeTemp(t, "book.md", chapterBook(5))

	var buf bytes.Buffer
	f := &MarkdownFormat{Detector: countingDetector(&buf)}
	doc, err := f.Load(mdFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if runs := strings.Count(buf.String(), "toc candidates generated"); runs != 1 {
		t.Errorf("detection ran %d times, want 1", runs)
	}
	if len(doc.TOC) != 5 || len(doc.Chapters) != 5 {
		t.Fatalf("TOC = %d entries, chapters = %d", len(doc.TOC), len(doc.Chapters))
	}
	if doc.TOC[4].WordIndex != doc.Chapters[4].WordStart {
		t.Errorf("TOC entry at word %d, chapter starts at %d", doc.TOC[4].WordIndex, doc.Chapters[4].WordStart)
	}
}
