package reader

// TOCEntry represents a single entry in a table of contents. Entries come
// from an EPUB NCX, Markdown headers, or headings detected in the text.
type TOCEntry struct {
	Title string
	// Preview holds the first words of the body after the heading line.
	Preview   string
	WordIndex int
	// Level is the nesting depth. Detected headings are always level 0.
	Level int
}

// Chapter represents extracted chapter content with boundaries
type Chapter struct {
	Title     string
	WordStart int
	WordEnd   int
}

// TOCProvider is an optional interface for formats that support TOC extraction
type TOCProvider interface {
	TOC(filename string) ([]TOCEntry, error)
}

// ChapterExtractor is an optional interface for chapter-aware extraction
type ChapterExtractor interface {
	ExtractChapters(filename string) ([]Chapter, []string, error)
}

// DocumentLoader is implemented by formats that resolve text, TOC and
// chapters in one pass. LoadDocument prefers it over TOCProvider and
// ChapterExtractor.
type DocumentLoader interface {
	Load(filename string) (*Document, error)
}
