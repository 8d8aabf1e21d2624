package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// TOC extracts the table of contents from an EPUB file.
func (f *EPUBFormat) TOC(filename string) ([]TOCEntry, error) {
	doc, err := f.Load(filename)
	if err != nil {
		return nil, err
	}
	return doc.TOC, nil
}

// ExtractChapters extracts text with chapter boundaries preserved. With an
// NCX each spine document is a chapter, otherwise chapters are cut at the
// detected headings.
func (f *EPUBFormat) ExtractChapters(filename string) ([]Chapter, []string, error) {
	b, err := openBook(filename)
	if err != nil {
		return nil, nil, err
	}
	_, chapters, words := f.structure(b)
	return chapters, words, nil
}

// Load opens the book once and resolves its TOC and chapters together.
func (f *EPUBFormat) Load(filename string) (*Document, error) {
	b, err := openBook(filename)
	if err != nil {
		return nil, err
	}
	toc, chapters, words := f.structure(b)
	return &Document{
		Text:     strings.Join(words, " "),
		TOC:      toc,
		Chapters: chapters,
	}, nil
}

func (f *EPUBFormat) structure(b *book) ([]TOCEntry, []Chapter, []string) {
	text := b.text()
	words := ParseText(text)
	if b.nav == nil {
		items := detectItems(f.Detector, text)
		return TOCFromItems(text, items), ChaptersFromItems(text, items, len(words)), words
	}

	titles := b.titlesByHref()
	var chapters []Chapter
	start := 0
	for i, s := range b.sections {
		if s.words == 0 {
			continue
		}
		title, ok := lookupHref(titles, s.href)
		if !ok {
			title = fmt.Sprintf("Section %d", i+1)
		}
		chapters = append(chapters, Chapter{
			Title:     title,
			WordStart: start,
			WordEnd:   start + s.words - 1,
		})
		start += s.words
	}
	return b.flatten(b.nav, b.spineIndex(), 0), chapters, words
}

// lookupHref finds href in m by full path, then by base name.
func lookupHref[V any](m map[string]V, href string) (V, bool) {
	if v, ok := m[href]; ok {
		return v, true
	}
	v, ok := m[path.Base(href)]
	return v, ok
}

// titlesByHref maps each navigation target, with and without fragment and
// directory, to the first label pointing at it.
func (b *book) titlesByHref() map[string]string {
	result := make(map[string]string)
	add := func(href, title string) {
		if _, exists := result[href]; !exists {
			result[href] = title
		}
	}

	var extract func(points []navPoint)
	extract = func(points []navPoint) {
		for _, np := range points {
			href := np.Content.Src
			title := strings.TrimSpace(np.Label.Text)
			base := stripFragment(href)

			add(href, title)
			add(base, title)
			add(path.Base(base), title)
			extract(np.Children)
		}
	}
	extract(b.nav)
	return result
}

func stripFragment(href string) string {
	if idx := strings.Index(href, "#"); idx != -1 {
		return href[:idx]
	}
	return href
}

type spineInfo struct {
	wordIndex int
	preview   string
}

// spineIndex maps each section href and base name to its first word.
func (b *book) spineIndex() map[string]spineInfo {
	m := make(map[string]spineInfo)
	wordCount := 0
	for _, s := range b.sections {
		preview := ""
		if words := firstWords(s.text, previewWords); len(words) > 0 {
			preview = strings.Join(words, " ") + "..."
		}
		if s.href != "" {
			info := spineInfo{wordIndex: wordCount, preview: preview}
			m[s.href] = info
			m[path.Base(s.href)] = info
		}
		wordCount += s.words
	}
	return m
}

func (b *book) flatten(points []navPoint, spine map[string]spineInfo, level int) []TOCEntry {
	var entries []TOCEntry
	for _, np := range points {
		info, _ := lookupHref(spine, stripFragment(np.Content.Src))
		entries = append(entries, TOCEntry{
			Title:     strings.TrimSpace(np.Label.Text),
			Preview:   info.preview,
			WordIndex: info.wordIndex,
			Level:     level,
		})
		entries = append(entries, b.flatten(np.Children, spine, level+1)...)
	}
	return entries
}

// readNCX locates the NCX through the manifest, falling back to any .ncx in
// the archive, and parses its navigation map.
func readNCX(filename string, root *epub.Rootfile) ([]navPoint, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range root.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX file found in EPUB")
	}

	for _, f := range zr.File {
		if f.Name != ncxPath && !strings.HasSuffix(f.Name, "/"+ncxPath) && path.Base(f.Name) != path.Base(ncxPath) {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		var toc ncx
		if err := xml.Unmarshal(data, &toc); err != nil {
			return nil, fmt.Errorf("failed to parse NCX: %w", err)
		}
		if len(toc.NavMap.NavPoints) == 0 {
			return nil, fmt.Errorf("NCX %s has no navigation points", ncxPath)
		}
		return toc.NavMap.NavPoints, nil
	}
	return nil, fmt.Errorf("NCX file %s not found in archive", ncxPath)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
