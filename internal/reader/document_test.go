package reader

import (
	"strings"
	"testing"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

func TestLoadDocumentText(t *testing.T) {
	content := chapterBook(5)
	path := writeTemp(t, "book.txt", content)

	t.Run("with detector", func(t *testing.T) {
		doc, err := LoadDocument(path, autotoc.New(autotoc.DefaultParams()))
		if err != nil {
			t.Fatalf("LoadDocument: %v", err)
		}
		if doc.Text != content {
			t.Error("plain text should be returned verbatim")
		}
		if !doc.Structured() || len(doc.TOC) != 5 || len(doc.Chapters) != 5 {
			t.Errorf("expected 5 TOC entries and chapters, got %d and %d", len(doc.TOC), len(doc.Chapters))
		}
		if doc.Template != "Chapter *" {
			t.Errorf("Template = %q, want %q", doc.Template, "Chapter *")
		}
	})

	t.Run("without detector", func(t *testing.T) {
		doc, err := LoadDocument(path, nil)
		if err != nil {
			t.Fatalf("LoadDocument: %v", err)
		}
		if doc.Structured() || doc.Template != "" {
			t.Errorf("expected unstructured document, got %d entries", len(doc.TOC))
		}
	})
}

func TestLoadDocumentMarkdown(t *testing.T) {
	path := writeTemp(t, "notes.md", "# One\nfirst part\n\n# Two\nsecond part\n")

	doc, err := LoadDocument(path, autotoc.New(autotoc.DefaultParams()))
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(doc.TOC) != 2 || doc.TOC[1].Title != "Two" {
		t.Errorf("unexpected markdown TOC: %+v", doc.TOC)
	}
	if doc.Template != "" {
		t.Errorf("markdown TOC should not carry a template, got %q", doc.Template)
	}
}

func TestLoadDocumentMarkdownDetected(t *testing.T) {
	path := writeTemp(t, "book.md", chapterBook(5))

	doc, err := LoadDocument(path, nil)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(doc.TOC) != 5 || len(doc.Chapters) != 5 {
		t.Fatalf("expected 5 TOC entries and chapters, got %d and %d", len(doc.TOC), len(doc.Chapters))
	}
	if !strings.HasPrefix(doc.Text, "Chapter 1 The wind") {
		t.Errorf("Text = %.30q", doc.Text)
	}
}

func TestLoadDocumentUnknownExtension(t *testing.T) {
	path := writeTemp(t, "notes.log", "just a log line")

	doc, err := LoadDocument(path, nil)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.Text != "just a log line" {
		t.Errorf("Text = %q", doc.Text)
	}
}

func TestLoadDocumentMissingFile(t *testing.T) {
	if _, err := LoadDocument("/nonexistent/book.txt", nil); err == nil {
		t.Error("expected error")
	}
}

func TestDocumentApplyTemplate(t *testing.T) {
	doc := NewDocument(chapterBook(4))

	if !doc.ApplyTemplate("Chapter *") {
		t.Fatal("ApplyTemplate should succeed")
	}
	if len(doc.TOC) != 4 || doc.Template != "Chapter *" {
		t.Errorf("got %d entries, template %q", len(doc.TOC), doc.Template)
	}

	if doc.ApplyTemplate("/(/") {
		t.Error("invalid template should fail")
	}
	if doc.ApplyTemplate("Appendix *") {
		t.Error("template selecting nothing should fail")
	}
	if doc.ApplyTemplate("") {
		t.Error("empty template should fail")
	}
	if len(doc.TOC) != 4 {
		t.Error("failed apply must keep the previous TOC")
	}

	doc.SetDetected(nil)
	if doc.Structured() || doc.Chapters != nil || doc.Template != "" {
		t.Error("SetDetected(nil) should clear structure")
	}
}
