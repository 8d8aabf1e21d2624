package reader

import (
	"strings"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

// Document is the text to read plus whatever structure could be recovered
// for it.
type Document struct {
	Text     string
	TOC      []TOCEntry
	Chapters []Chapter
	// Template is the heading template the TOC was detected with, "" when
	// the TOC came from the file format itself or nothing was detected.
	Template string
}

// NewDocument wraps unstructured text, e.g. from stdin.
func NewDocument(text string) *Document {
	return &Document{Text: text}
}

// LoadDocument extracts text, TOC and chapters from filename through the
// optional DocumentLoader, TOCProvider and ChapterExtractor interfaces.
// Plain text runs heading detection with det; a nil det leaves plain text
// unstructured so the caller can detect in the background.
func LoadDocument(filename string, det *autotoc.Detector) (*Document, error) {
	f := FormatFor(filename)
	if _, plain := f.(*TextFormat); plain || f == nil {
		text, err := ExtractText(filename)
		if err != nil {
			return nil, err
		}
		doc := NewDocument(text)
		if det != nil {
			res, _ := det.Detect(text)
			doc.SetDetected(res)
		}
		return doc, nil
	}

	if dl, ok := f.(DocumentLoader); ok {
		doc, err := dl.Load(filename)
		if err == nil && doc.Text != "" {
			return doc, nil
		}
	}

	doc := &Document{}
	if tp, ok := f.(TOCProvider); ok {
		if toc, err := tp.TOC(filename); err == nil {
			doc.TOC = toc
		}
	}
	if ce, ok := f.(ChapterExtractor); ok {
		chapters, words, err := ce.ExtractChapters(filename)
		if err == nil && len(words) > 0 {
			doc.Chapters = chapters
			doc.Text = strings.Join(words, " ")
		}
	}

	// Fallback to simple extraction
	if doc.Text == "" {
		text, err := f.Extract(filename)
		if err != nil {
			return nil, err
		}
		doc.Text = text
	}
	return doc, nil
}

// Structured reports whether the document already has a TOC.
func (d *Document) Structured() bool {
	return len(d.TOC) > 0
}

// SetDetected installs the TOC and chapters described by a detection result.
// A nil result clears them.
func (d *Document) SetDetected(res *autotoc.Result) {
	if res == nil {
		d.TOC, d.Chapters, d.Template = nil, nil, ""
		return
	}
	d.TOC = TOCFromItems(d.Text, res.Items)
	d.Chapters = ChaptersFromItems(d.Text, res.Items, len(ParseText(d.Text)))
	d.Template = res.Template
}

// ApplyTemplate regenerates headings from a previously detected template.
// It reports false when the template is invalid or selects nothing.
func (d *Document) ApplyTemplate(template string) bool {
	if template == "" {
		return false
	}
	items, ok := autotoc.Apply(d.Text, template)
	if !ok || len(items) == 0 {
		return false
	}
	d.SetDetected(&autotoc.Result{Items: items, Template: template})
	return true
}
