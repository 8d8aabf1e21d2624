package reader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractTextFromHTML(t *testing.T) {
	htmlContent := `
	<html>
		<head><title>Test</title></head>
		<body>
			<h1>Chapter 1</h1>
			<p>This is the <b>first</b> paragraph.</p>
			<p>
				This is the second paragraph
				with a newline.
			</p>
			<div>Some <span>nested</span> text.</div>
		</body>
	</html>
	`

	expectedWords := []string{"Test", "Chapter", "1", "This", "is", "the", "first", "paragraph.", "This", "is", "the", "second", "paragraph", "with", "a", "newline.", "Some", "nested", "text."}

	text := extractTextFromHTML(htmlContent)
	words := ParseText(text) // Use the existing ParseText to split by whitespace

	if len(words) != len(expectedWords) {
		t.Errorf("Expected %d words, got %d", len(expectedWords), len(words))
	}

	for i, word := range words {
		if i < len(expectedWords) && word != expectedWords[i] {
			t.Errorf("Word %d: expected %q, got %q", i, expectedWords[i], word)
		}
	}
}

func TestExtractTextFromHTMLLines(t *testing.T) {
	htmlContent := `<html><body>
		<h2>Chapter 1</h2>
		<script>var x = 1;</script>
		<p>One <i>two</i><br/>three</p>
		<style>p { color: red }</style>
	</body></html>`

	want := "Chapter 1\nOne two\nthree"
	if got := extractTextFromHTML(htmlContent); got != want {
		t.Errorf("extractTextFromHTML = %q, want %q", got, want)
	}
}

// writeEPUB builds a minimal EPUB 2 with one spine document per body. An
// NCX is included when labels is non-nil.
func writeEPUB(t *testing.T, bodies []string, labels []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	zw := zip.NewWriter(out)

	add := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip Create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip Write %s: %v", name, err)
		}
	}

	add("mimetype", "application/epub+zip")
	add("META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	var manifest, spine, navPoints strings.Builder
	for i, body := range bodies {
		href := fmt.Sprintf("ch%d.xhtml", i+1)
		fmt.Fprintf(&manifest, `<item id="ch%d" href="%s" media-type="application/xhtml+xml"/>`+"\n", i+1, href)
		fmt.Fprintf(&spine, `<itemref idref="ch%d"/>`+"\n", i+1)
		add("OEBPS/"+href, `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body>`+body+`</body></html>`)
		if i < len(labels) {
			fmt.Fprintf(&navPoints, `<navPoint id="np%d" playOrder="%d"><navLabel><text>%s</text></navLabel><content src="%s"/></navPoint>`+"\n",
				i+1, i+1, labels[i], href)
		}
	}
	if labels != nil {
		manifest.WriteString(`<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>`)
		add("OEBPS/toc.ncx", `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1"><navMap>
`+navPoints.String()+`</navMap></ncx>`)
	}
	add("OEBPS/content.opf", `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="id">
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Test</dc:title></metadata>
<manifest>
`+manifest.String()+`</manifest>
<spine toc="ncx">
`+spine.String()+`</spine>
</package>`)

	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func chapterBodies(n int) []string {
	var bodies []string
	for i := 1; i <= n; i++ {
		bodies = append(bodies, fmt.Sprintf("<h2>Chapter %d</h2><p>%s</p>", i, textFiller))
	}
	return bodies
}

func TestEPUBExtract(t *testing.T) {
	path := writeEPUB(t, chapterBodies(2), nil)

	got, err := (&EPUBFormat{}).Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Chapter 1\n" + textFiller + "\nChapter 2\n" + textFiller
	if got != want {
		t.Errorf("Extract = %q, want %q", got, want)
	}
}

func TestEPUBTOCFromNCX(t *testing.T) {
	path := writeEPUB(t, chapterBodies(3), []string{"Opening", "Middle", "End"})
	f := &EPUBFormat{}

	toc, err := f.TOC(path)
	if err != nil {
		t.Fatalf("TOC: %v", err)
	}
	if len(toc) != 3 {
		t.Fatalf("Expected 3 TOC entries, got %d", len(toc))
	}
	for i, want := range []string{"Opening", "Middle", "End"} {
		if toc[i].Title != want {
			t.Errorf("entry %d title = %q, want %q", i, toc[i].Title, want)
		}
		if toc[i].WordIndex != 37*i {
			t.Errorf("entry %d word index = %d, want %d", i, toc[i].WordIndex, 37*i)
		}
	}
	if !strings.HasPrefix(toc[1].Preview, "Chapter 2 The wind") || !strings.HasSuffix(toc[1].Preview, "...") {
		t.Errorf("preview = %q", toc[1].Preview)
	}

	chapters, words, err := f.ExtractChapters(path)
	if err != nil {
		t.Fatalf("ExtractChapters: %v", err)
	}
	if len(words) != 111 || len(chapters) != 3 {
		t.Fatalf("got %d words, %d chapters", len(words), len(chapters))
	}
	if chapters[2].Title != "End" || chapters[2].WordStart != 74 || chapters[2].WordEnd != 110 {
		t.Errorf("last chapter = %+v", chapters[2])
	}
}

func TestEPUBTOCDetectedWithoutNCX(t *testing.T) {
	path := writeEPUB(t, chapterBodies(5), nil)
	f := &EPUBFormat{}

	toc, err := f.TOC(path)
	if err != nil {
		t.Fatalf("TOC: %v", err)
	}
	if len(toc) != 5 {
		t.Fatalf("Expected 5 detected entries, got %d", len(toc))
	}
	if toc[4].Title != "Chapter 5" || toc[4].WordIndex != 148 {
		t.Errorf("last entry = %+v", toc[4])
	}

	chapters, _, err := f.ExtractChapters(path)
	if err != nil {
		t.Fatalf("ExtractChapters: %v", err)
	}
	if len(chapters) != 5 || chapters[0].Title != "Chapter 1" {
		t.Errorf("chapters = %+v", chapters)
	}
}

func TestEPUBLoadDetectsOnce(t *testing.T) {
	path := writeEPUB(t, chapterBodies(5), nil)

	var buf bytes.Buffer
	f := &EPUBFormat{Detector: countingDetector(&buf)}
	doc, err := f.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if runs := strings.Count(buf.String(), "toc candidates generated"); runs != 1 {
		t.Errorf("detection ran %d times, want 1", runs)
	}
	if len(doc.TOC) != 5 || len(doc.Chapters) != 5 || doc.Text == "" {
		t.Errorf("doc = %d entries, %d chapters", len(doc.TOC), len(doc.Chapters))
	}
}

func TestEPUBMissingFile(t *testing.T) {
	if _, err := (&EPUBFormat{}).TOC(filepath.Join(t.TempDir(), "none.epub")); err == nil {
		t.Error("expected error")
	}
}
