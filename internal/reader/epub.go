package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/metcalfc/brrtoc/internal/autotoc"
	"github.com/metcalfc/brrtoc/internal/logging"
)

// EPUBFormat implements Format for EPUB files. The NCX navigation map
// provides the TOC; books without one get their headings detected from the
// extracted text.
type EPUBFormat struct {
	// Detector runs heading detection for books without an NCX. nil uses
	// autotoc defaults.
	Detector *autotoc.Detector
}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Extract(filename string) (string, error) {
	b, err := openBook(filename)
	if err != nil {
		return "", err
	}
	return b.text(), nil
}

// section is the extracted text of one spine document.
type section struct {
	href  string
	text  string
	words int
}

// book is everything brr needs from an EPUB, read in one pass.
type book struct {
	sections []section
	// nav is nil when the book has no usable NCX.
	nav []navPoint
}

func openBook(filename string) (*book, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	root := rc.Rootfiles[0]

	b := &book{}
	for _, ref := range root.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		data, err := readItem(ref.Item)
		if err != nil {
			logging.Logger().Debug("skipping spine item", "href", ref.Item.HREF, "err", err)
			continue
		}
		text := extractTextFromHTML(string(data))
		b.sections = append(b.sections, section{
			href:  ref.Item.HREF,
			text:  text,
			words: len(strings.Fields(text)),
		})
	}

	nav, err := readNCX(filename, root)
	if err != nil {
		logging.Logger().Debug("no epub navigation map", "file", filename, "err", err)
	} else {
		b.nav = nav
	}
	return b, nil
}

func readItem(item *epub.Item) ([]byte, error) {
	r, err := item.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// text joins the sections, one per paragraph.
func (b *book) text() string {
	parts := make([]string, 0, len(b.sections))
	for _, s := range b.sections {
		if s.text != "" {
			parts = append(parts, s.text)
		}
	}
	return strings.Join(parts, "\n")
}

// blockElements end a line in extracted text so headings stay on their own
// line for detection.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Title: true, atom.Blockquote: true, atom.Section: true, atom.Tr: true,
}

func extractTextFromHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				out.WriteString(t)
				out.WriteString(" ")
			}
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			out.WriteString("\n")
		}
	}
	walk(doc)

	var lines []string
	for _, line := range strings.Split(out.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
